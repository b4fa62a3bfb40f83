package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dlogc/dlc/ast"
	"github.com/dlogc/dlc/internal/config"
)

func init() {
	logger = zap.NewNop()
}

func newTestProgram() *ast.Program {
	edge := ast.NewQualifiedName("edge")

	prog := ast.NewProgram()
	rel := ast.NewRelation(edge, []ast.Attribute{{Name: "x"}, {Name: "y"}}, nil)
	_ = prog.AddRelation(rel)

	head := ast.NewAtom(edge, []ast.Argument{ast.StrConst("a"), ast.StrConst("b")}, nil)
	prog.AddClause(ast.NewFact(head))
	return prog
}

func TestWriteProgramThenReadProgramRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.json")

	prog := newTestProgram()
	require.NoError(t, writeProgram(prog, path))

	got, err := readProgram(path, config.Default())
	require.NoError(t, err)

	assert.Len(t, got.Clauses(), 1)
	assert.Equal(t, "edge", got.Clauses()[0].Head.Name.String())
}

func TestReadProgramMissingFileErrors(t *testing.T) {
	_, err := readProgram(filepath.Join(t.TempDir(), "missing.json"), config.Default())
	assert.Error(t, err)
}

func TestResolveConfigAppliesExplicitFlagsOverLoadedFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "dlc.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("sipsPolicy: all-bound\n"), 0o644))

	cmd := &cobra.Command{}
	cmd.Flags().StringVar(&sipsPolicy, "sips", "", "")
	cmd.Flags().BoolVar(&profileUse, "profile-use", false, "")
	cmd.Flags().BoolVar(&legacy, "legacy", false, "")
	require.NoError(t, cmd.Flags().Set("sips", "max-bound"))

	cfgFile = cfgPath
	sipsPolicy = "max-bound"
	defer func() { cfgFile = "" }()

	cfg, err := resolveConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, "max-bound", cfg.SIPSPolicy)
}

func TestBuildDepsRequiresProfilePathWhenProfileUseConfigured(t *testing.T) {
	prog := newTestProgram()
	profilePath = ""
	_, err := buildDeps(prog, config.Config{ProfileUse: true})
	assert.Error(t, err)
}
