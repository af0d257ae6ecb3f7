package packets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCommand(t *testing.T) {
	data, err := Marshal(TypeActivate, Command{ID: 2, Active: true})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"activate","payload":{"id":2,"active":true}}`, string(data))

	env, err := Unmarshal(data)
	require.NoError(t, err)
	var cmd Command
	require.NoError(t, env.Decode(&cmd))
	assert.Equal(t, Command{ID: 2, Active: true}, cmd)
}

func TestMarshalWithoutPayload(t *testing.T) {
	data, err := Marshal(TypeNext, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"next"}`, string(data))

	env, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Error(t, env.Decode(&Command{}))
}

func TestUnmarshalRejects(t *testing.T) {
	_, err := Unmarshal([]byte(`not json`))
	assert.Error(t, err)
	_, err = Unmarshal([]byte(`{"payload":{}}`))
	assert.Error(t, err)
}
