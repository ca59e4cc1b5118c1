package phpser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromYAML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty document", ``, "N;"},
		{"null", `~`, "N;"},
		{"bool", `true`, "b:1;"},
		{"int", `-12`, "i:-12;"},
		{"hex int", `0x1F`, "i:31;"},
		{"float", `2.5`, "d:2.5;"},
		{"inf", `.inf`, "d:INF;"},
		{"quoted number stays string", `"12"`, `s:2:"12";`},
		{"binary", `!!binary aGk=`, `s:2:"hi";`},
		{"sequence", "- a\n- 1\n", `a:2:{i:0;s:1:"a";i:1;i:1;}`},
		{"mapping keeps order", "b: 1\na: 2\n", `a:2:{s:1:"b";i:1;s:1:"a";i:2;}`},
		{"numeric keys", "1: x\n\"2\": y\nfoo: z\n", `a:3:{i:1;s:1:"x";i:2;s:1:"y";s:3:"foo";s:1:"z";}`},
		{"bool and null keys", "true: a\n~: b\n", `a:2:{i:1;s:1:"a";s:0:"";s:1:"b";}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := FromYAML([]byte(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.want, mustSerialize(t, v))
		})
	}
}

func TestFromYAMLAnchorsBecomeReferences(t *testing.T) {
	in := "- &x hello\n- other\n- *x\n- *x\n"
	v, err := FromYAML([]byte(in))
	require.NoError(t, err)
	assert.Equal(t, `a:4:{i:0;s:5:"hello";i:1;s:5:"other";i:2;R:2;i:3;R:2;}`, mustSerialize(t, v))
}

func TestFromYAMLAnchorInMapping(t *testing.T) {
	in := "a: &v 1\nb: 2\nc: *v\n"
	v, err := FromYAML([]byte(in))
	require.NoError(t, err)
	assert.Equal(t, `a:3:{s:1:"a";i:1;s:1:"b";i:2;s:1:"c";R:2;}`, mustSerialize(t, v))
}

func TestFromYAMLAliasAcrossContainers(t *testing.T) {
	// Aliases in different collections share a cell but are not siblings.
	in := "base: &b [1]\nnested:\n  copy: *b\n"
	v, err := FromYAML([]byte(in))
	require.NoError(t, err)
	assert.Equal(t, `a:2:{s:4:"base";a:1:{i:0;i:1;}s:6:"nested";a:1:{s:4:"copy";a:1:{i:0;i:1;}}}`, mustSerialize(t, v))
}

func TestFromYAMLObjectsAsStdClass(t *testing.T) {
	v, err := FromYAMLWithOpts([]byte("a: 1\nb: [x]\n"), BridgeOpts{ObjectsAsStdClass: true})
	require.NoError(t, err)
	assert.Equal(t, `O:8:"stdClass":2:{s:1:"a";i:1;s:1:"b";a:1:{i:0;s:1:"x";}}`, mustSerialize(t, v))
}

func TestFromYAMLPropertyNames(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"aliased key",
			"a: &k name\n*k : 1\n",
			`O:8:"stdClass":2:{s:1:"a";s:4:"name";s:4:"name";i:1;}`,
		},
		{
			"integer key",
			"7: x\n",
			`O:8:"stdClass":1:{s:1:"7";s:1:"x";}`,
		},
		{
			"boolean key",
			"true: x\n",
			`O:8:"stdClass":1:{s:1:"1";s:1:"x";}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := FromYAMLWithOpts([]byte(tt.in), BridgeOpts{ObjectsAsStdClass: true})
			require.NoError(t, err)
			assert.Equal(t, tt.want, mustSerialize(t, v))
		})
	}
}

func TestFromYAMLErrors(t *testing.T) {
	_, err := FromYAML([]byte("a: [1\n"))
	assert.Error(t, err)

	_, err = FromYAMLWithOpts([]byte("a:\n  b:\n    c: 1\n"), BridgeOpts{MaxDepth: 2})
	assert.ErrorIs(t, err, ErrDepthExceeded)

	_, err = FromYAML([]byte("? [1, 2]\n: x\n"))
	assert.ErrorIs(t, err, ErrInvalidKey)
}
