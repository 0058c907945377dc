// Copyright 2026 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package apply_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"carvel.dev/graft/pkg/cmd/apply"
	"carvel.dev/graft/pkg/orderedmap"
)

func TestContextFlagsKVs(t *testing.T) {
	flags := apply.ContextFlags{
		KVsFromStrings: []string{"workspace=live", "site.name=Graft Docs"},
		KVsFromYAML:    []string{"site.rank=3", "flags=[a, b]"},
	}

	vals, err := flags.Values()
	require.NoError(t, err)

	require.Equal(t, "live", vals["workspace"])
	require.Equal(t, []interface{}{"a", "b"}, vals["flags"])

	site, ok := vals["site"].(*orderedmap.Map)
	require.True(t, ok, "expected dotted keys to build a nested mapping")

	name, _ := site.Get("name")
	require.Equal(t, "Graft Docs", name)

	rank, _ := site.Get("rank")
	require.Equal(t, 3, rank)
}

func TestContextFlagsEnv(t *testing.T) {
	t.Setenv("CTXTEST_workspace", "stage")
	t.Setenv("CTXTEST_site__name", "Envsite")
	t.Setenv("CTXTESTX_other", "ignored")
	t.Setenv("CTXNUM_limit", "42")

	flags := apply.ContextFlags{
		EnvFromStrings: []string{"CTXTEST"},
		EnvFromYAML:    []string{"CTXNUM"},
	}

	vals, err := flags.Values()
	require.NoError(t, err)

	require.Equal(t, "stage", vals["workspace"])
	require.Equal(t, 42, vals["limit"])
	require.NotContains(t, vals, "other")

	site, ok := vals["site"].(*orderedmap.Map)
	require.True(t, ok)

	name, _ := site.Get("name")
	require.Equal(t, "Envsite", name)
}

func TestContextFlagsFiles(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "ctx.yml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("site:\n  name: Filesite\n  rank: 1\n"), 0600))

	jsonPath := filepath.Join(dir, "ctx.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"workspace": "live"}`), 0600))

	tomlPath := filepath.Join(dir, "ctx.toml")
	require.NoError(t, os.WriteFile(tomlPath, []byte("limit = 42\n\n[site]\nname = \"Tomlsite\"\n"), 0600))

	flags := apply.ContextFlags{FromFiles: []string{yamlPath, jsonPath, tomlPath}}

	vals, err := flags.Values()
	require.NoError(t, err)

	require.Equal(t, "live", vals["workspace"])
	require.Equal(t, int64(42), vals["limit"])

	site, ok := vals["site"].(*orderedmap.Map)
	require.True(t, ok)

	// later files win per key, sibling keys survive
	name, _ := site.Get("name")
	require.Equal(t, "Tomlsite", name)

	rank, _ := site.Get("rank")
	require.Equal(t, 1, rank)
}

func TestContextFlagsPrecedence(t *testing.T) {
	t.Setenv("CTXPREC_greeting", "from-env")

	dir := t.TempDir()
	filePath := filepath.Join(dir, "ctx.yml")
	require.NoError(t, os.WriteFile(filePath, []byte("greeting: from-file\nkept: file\n"), 0600))

	flags := apply.ContextFlags{
		EnvFromStrings: []string{"CTXPREC"},
		FromFiles:      []string{filePath},
		KVsFromStrings: []string{"greeting=from-kv"},
		KVsFromYAML:    []string{"greeting=from-yaml-kv"},
	}

	vals, err := flags.Values()
	require.NoError(t, err)

	require.Equal(t, "from-yaml-kv", vals["greeting"])
	require.Equal(t, "file", vals["kept"])
}

func TestContextFlagsConflictingKeys(t *testing.T) {
	flags := apply.ContextFlags{KVsFromStrings: []string{"a=1", "a.b=2"}}

	_, err := flags.Values()
	require.Error(t, err)
	require.Contains(t, err.Error(), "to not conflict with other context values at piece 'a'")
}

func TestContextFlagsNonMappingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "list.yml")
	require.NoError(t, os.WriteFile(path, []byte("- a\n- b\n"), 0600))

	flags := apply.ContextFlags{FromFiles: []string{path}}

	_, err := flags.Values()
	require.Error(t, err)
	require.Contains(t, err.Error(), "to hold a mapping at the top level")
}

func TestContextFlagsMalformedKV(t *testing.T) {
	flags := apply.ContextFlags{KVsFromStrings: []string{"no-equals-sign"}}

	_, err := flags.Values()
	require.Error(t, err)
	require.Contains(t, err.Error(), "Expected format key=value")
}
