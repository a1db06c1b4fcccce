package iojson

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Subject string `json:"subject"`
	Done    bool   `json:"done"`
}

func TestWriteWith(t *testing.T) {
	var out, errOut bytes.Buffer
	require.NoError(t, WriteWith(&out, &errOut, payload{Subject: "a"}))

	assert.JSONEq(t, `{"subject":"a","done":false}`, out.String())
	assert.Zero(t, errOut.Len())
}

func TestWriteWith_MarshalFailure(t *testing.T) {
	var out, errOut bytes.Buffer
	require.NoError(t, WriteWith(&out, &errOut, map[string]any{"ch": make(chan int)}))

	assert.Zero(t, out.Len())
	var e Error
	require.NoError(t, json.Unmarshal(errOut.Bytes(), &e))
	assert.Equal(t, "cannot encode output", e.Message)
	assert.Contains(t, e.Data, "json_error")
}

func TestEncode_KeepsHTMLCharacters(t *testing.T) {
	bits, err := Encode(payload{Subject: "R&D <draft>"})
	require.NoError(t, err)
	assert.Contains(t, string(bits), `"R&D <draft>"`)
	assert.True(t, strings.HasSuffix(string(bits), "}\n"))
}

func TestFileReader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"subject":"from file","extra":1}`), 0o644))

	fr := &FileReader[payload]{path: path}
	got, err := fr.Read()
	require.NoError(t, err)
	assert.Equal(t, "from file", got.Subject)

	fr = &FileReader[payload]{stdin: strings.NewReader(`{"subject":"piped","done":true}`)}
	got, err = fr.Read()
	require.NoError(t, err)
	assert.Equal(t, payload{Subject: "piped", Done: true}, got)

	fr = &FileReader[payload]{stdin: strings.NewReader(`nope`)}
	_, err = fr.Read()
	assert.ErrorContains(t, err, "decode JSON")
}
