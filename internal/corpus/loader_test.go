package corpus

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietlegal/lawrag/internal/errors"
)

const sampleCorpus = `{"id":"ld-6-1","clause_text":"Người sử dụng lao động có quyền tuyển dụng.","law_title":"Luật Lao động","article_title":"Điều 6","clause_no":"1","article_link":"https://example.vn/ld/6"}
{"id":"ld-6-2","clause_text":"Người sử dụng lao động có nghĩa vụ thực hiện hợp đồng.","law_title":"Luật Lao động","article_title":"Điều 6","clause_no":"2","article_link":"https://example.vn/ld/6"}

{"id":"bhxh-2-1","clause_text":"Người lao động tham gia bảo hiểm xã hội bắt buộc.","law_title":"Luật Bảo hiểm xã hội","article_title":"Điều 2","clause_no":"1","article_link":"https://example.vn/bhxh/2"}
`

func TestRead_ParsesRecordsAndSkipsBlankLines(t *testing.T) {
	docs, err := Read(strings.NewReader(sampleCorpus))
	require.NoError(t, err)
	require.Len(t, docs, 3)

	assert.Equal(t, "ld-6-2", docs[1].ID)
	assert.Equal(t, "Luật Lao động", docs[1].LawTitle)
	assert.Equal(t, "2", docs[1].ClauseNo)
	assert.Contains(t, docs[1].Text, "nghĩa vụ")
}

func TestRead_EmptyCorpusFails(t *testing.T) {
	_, err := Read(strings.NewReader("\n\n"))
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeCorpusEmpty, errors.GetCode(err))
	assert.True(t, errors.IsFatal(err))
}

func TestRead_MalformedLineFails(t *testing.T) {
	_, err := Read(strings.NewReader(`{"id":"a","clause_text":"ok"}` + "\n" + `{not json`))
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeCorpusMalformed, errors.GetCode(err))
	assert.Contains(t, err.Error(), "line 2")
}

func TestRead_MissingIDFails(t *testing.T) {
	_, err := Read(strings.NewReader(`{"clause_text":"no id here"}`))
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeCorpusMalformed, errors.GetCode(err))
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.jsonl"))
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeCorpusNotFound, errors.GetCode(err))
}

func TestLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(sampleCorpus), 0o644))

	docs, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, docs, 3)
}
