// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"
)

func TestText_Basics(t *testing.T) {
	assert.True(t, Null().IsNull())
	assert.True(t, Null().IsBlank())
	assert.Equal(t, Null(), Text{})

	blank := NewText("  ")
	assert.False(t, blank.IsNull())
	assert.True(t, blank.IsBlank())
	assert.Equal(t, "  ", blank.String())

	assert.False(t, NewText("113").IsBlank())
}

func TestText_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		want     string
		wantNull bool
	}{
		{"string", `"李文廷"`, "李文廷", false},
		{"empty string", `""`, "", false},
		{"null", `null`, "", true},
		{"integer", `112`, "112", false},
		{"float keeps literal", `112.0`, "112.0", false},
		{"bool", `true`, "true", false},
		{"object compacted", `{"a": 1, "b": [1, 2]}`, `{"a":1,"b":[1,2]}`, false},
		{"array compacted", `[ "x", 2 ]`, `["x",2]`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v struct {
				F Text `json:"f"`
			}
			require.NoError(t, json.Unmarshal([]byte(`{"f": `+tt.in+`}`), &v))
			assert.Equal(t, tt.wantNull, v.F.IsNull())
			assert.Equal(t, tt.want, v.F.String())
		})
	}
}

func TestText_UnmarshalJSONMissingFieldIsNull(t *testing.T) {
	var r AwardRecord
	require.NoError(t, json.Unmarshal([]byte(`{"pi_name":"Chen Yu"}`), &r))
	assert.Equal(t, "Chen Yu", r.PIName.String())
	assert.True(t, r.Impact.IsNull())
}

func TestText_UnmarshalJSONInvalidScalar(t *testing.T) {
	var v Text
	assert.Error(t, v.UnmarshalJSON([]byte(`tru`)))
	assert.Error(t, v.UnmarshalJSON([]byte(`"unterminated`)))
	assert.Error(t, v.UnmarshalJSON([]byte(`{"a":`)))
}

func TestText_MarshalJSON(t *testing.T) {
	r := AwardRecord{AwardYear: NewText("113"), Impact: NewText("")}
	data, err := json.Marshal(r)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "113", raw["award_year"])
	assert.Equal(t, "", raw["impact"])
	assert.Contains(t, raw, "organ")
	assert.Nil(t, raw["organ"])
}

func TestText_UnmarshalYAML(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		want     string
		wantNull bool
	}{
		{"plain", `李文廷`, "李文廷", false},
		{"quoted number", `"112"`, "112", false},
		{"bare number", `112`, "112", false},
		{"empty quoted", `""`, "", false},
		{"tilde", `~`, "", true},
		{"null", `null`, "", true},
		{"mapping", `{a: 1}`, `{"a":1}`, false},
		{"sequence", `[x, 2]`, `["x",2]`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v struct {
				F Text `yaml:"f"`
			}
			require.NoError(t, yaml.Unmarshal([]byte("f: "+tt.in+"\n"), &v))
			assert.Equal(t, tt.wantNull, v.F.IsNull())
			assert.Equal(t, tt.want, v.F.String())
		})
	}
}

func TestText_MarshalYAML(t *testing.T) {
	out, err := yaml.Marshal(struct {
		A Text `yaml:"a"`
		B Text `yaml:"b"`
	}{A: NewText("abc")})
	require.NoError(t, err)
	assert.Equal(t, "a: abc\nb: null\n", string(out))
}
