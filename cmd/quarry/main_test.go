package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hupe1980/quarry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dataset = `{"type":"Foo","key":"1","fields":{"bar":"bar1","baz":"baz1"}}
{"type":"Foo","key":"2","fields":{"bar":"bar2","baz":"baz2"}}
{"type":"Foo","key":"3","fields":{"bar":"bar3","baz":"baz3"}}
`

func writeFixture(t *testing.T) (cfgPath, dataPath string) {
	t.Helper()
	dir := t.TempDir()

	dataPath = filepath.Join(dir, "foo.ndjson")
	require.NoError(t, os.WriteFile(dataPath, []byte(dataset), 0o600))

	cfg := fmt.Sprintf(`types:
  - name: Foo
    fields:
      - name: bar
        type: string
      - name: baz
        type: string
snapshot:
  backend: local
  path: %s
  compression: lz4
log:
  level: error
`, filepath.Join(dir, "snapshots"))
	cfgPath = filepath.Join(dir, "quarry.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o600))
	return cfgPath, dataPath
}

func TestRunQuery(t *testing.T) {
	ctx := context.Background()
	cfgPath, dataPath := writeFixture(t)

	a, err := openApp(ctx, cfgPath, appOptions{data: dataPath})
	require.NoError(t, err)
	defer a.Close()

	tests := []struct {
		name  string
		text  string
		flags queryFlags
		want  string
	}{
		{"List", "SELECT baz,bar FROM Foo WHERE bar:'bar1'", queryFlags{mode: quarry.ModeList}, "[\"baz1\",\"bar1\"]\n"},
		{"Iterator", "SELECT bar FROM Foo", queryFlags{mode: quarry.ModeIterator, offset: 1}, "[\"bar2\"]\n[\"bar3\"]\n"},
		{"Empty", "SELECT bar FROM Foo WHERE bar:nomatch", queryFlags{mode: quarry.ModeList}, ""},
		{"Explain", "SELECT bar FROM Foo", queryFlags{explain: true}, "Project [bar]\n  Match Foo (all)\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, runQuery(ctx, a.db, &buf, tt.text, tt.flags))
			assert.Equal(t, tt.want, buf.String())
		})
	}

	var buf bytes.Buffer
	err = runQuery(ctx, a.db, &buf, "SELECT unknownField FROM Foo", queryFlags{mode: quarry.ModeList})
	assert.ErrorIs(t, err, quarry.ErrUnknownField)

	err = runQuery(ctx, a.db, &buf, "SELECT bar FROM Foo", queryFlags{mode: "stream"})
	assert.Error(t, err)
}

func TestSnapshotCommands(t *testing.T) {
	cfgPath, dataPath := writeFixture(t)

	run := func(args ...string) string {
		t.Helper()
		var out bytes.Buffer
		rootCmd.SetOut(&out)
		rootCmd.SetArgs(append([]string{"--config", cfgPath}, args...))
		require.NoError(t, rootCmd.Execute())
		return out.String()
	}

	out := run("snapshot", "save", "--data", dataPath, "s1")
	assert.True(t, strings.HasPrefix(out, "saved s1 "), out)
	assert.Contains(t, out, "3 records in 1 segments")

	assert.Equal(t, "Foo\t3\n", run("snapshot", "load"))
	assert.Equal(t, "Foo\t3\n", run("snapshot", "load", "s1"))
	assert.Equal(t, "* s1\n", run("snapshot", "list"))

	run("snapshot", "save", "--data", dataPath, "s2")
	assert.Equal(t, "  s1\n* s2\n", run("snapshot", "list"))

	rootCmd.SetArgs([]string{"--config", cfgPath, "snapshot", "delete", "s2"})
	assert.Error(t, rootCmd.Execute())

	assert.Equal(t, "deleted s1\n", run("snapshot", "delete", "s1"))
	assert.Equal(t, "* s2\n", run("snapshot", "list"))
}

func TestOpenAppErrors(t *testing.T) {
	ctx := context.Background()
	cfgPath, _ := writeFixture(t)

	_, err := openApp(ctx, cfgPath, appOptions{data: filepath.Join(t.TempDir(), "missing.ndjson")})
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.ndjson")
	require.NoError(t, os.WriteFile(bad, []byte(`{"type":"Nope","key":"1","fields":{}}`+"\n"), 0o600))
	_, err = openApp(ctx, cfgPath, appOptions{data: bad})
	assert.Error(t, err)
}
