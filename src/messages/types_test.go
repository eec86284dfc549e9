package messages

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeCopyRequestWireForm(t *testing.T) {
	b, err := Encode(CopyToClipboard{Text: "hello world"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"copyToClipboard","text":"hello world"}`, string(b))
}

func TestDecodeUnknownTag(t *testing.T) {
	m, err := Decode([]byte(`{"type":"openTab","text":"x"}`))
	require.NoError(t, err)
	assert.Equal(t, Unknown{Kind: "openTab"}, m)
	assert.Equal(t, "openTab", m.Type())
}

func TestDecodeMalformed(t *testing.T) {
	_, err := Decode([]byte(`{"type":`))
	assert.Error(t, err)
}

func TestEncodeNil(t *testing.T) {
	_, err := Encode(nil)
	assert.Error(t, err)
}
