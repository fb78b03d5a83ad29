package conv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v3"
)

func TestConfigGet(t *testing.T) {
	var m map[string]any
	src := "name: users\nk: 10\nratio: 2.5\nfields: [Id, 3, x]\n"
	if err := yaml.Unmarshal([]byte(src), &m); err != nil {
		t.Fatalf("yaml: %v", err)
	}

	assert.Equal(t, "users", ConfigGet(m, "name", ""))
	assert.Equal(t, "fallback", ConfigGet(m, "missing", "fallback"))
	assert.Equal(t, 0, ConfigGet(m, "name", 0))
	assert.Equal(t, 10, ConfigGetInt(m, "k", 1))
	assert.Equal(t, 1, ConfigGetInt(m, "ratio", 1))
	assert.Equal(t, 7, ConfigGetInt(map[string]any{"k": 7.0}, "k", 1))
	assert.Equal(t, []string{"Id", "3", "x"}, ConfigGetStrings(m, "fields"))
	assert.Nil(t, ConfigGetStrings(nil, "fields"))
}
