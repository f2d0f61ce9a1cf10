package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
)

func TestInitWithWriter_Levels(t *testing.T) {
	var buf bytes.Buffer

	InitWithWriter(false, &buf)
	assert.False(t, DebugEnabled())
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())
	log.Debug().Msg("hidden")
	assert.Empty(t, buf.String())

	InitWithWriter(true, &buf)
	assert.True(t, DebugEnabled())
	log.Debug().Int("task_id", 3).Msg("visible")
	assert.Contains(t, buf.String(), "visible")
	assert.Contains(t, buf.String(), "task_id=3")
}
