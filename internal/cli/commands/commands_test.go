package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/extmodel/metadata"
	"github.com/conduit-lang/extmodel/model"
	"github.com/conduit-lang/extmodel/persistence"
	"github.com/conduit-lang/extmodel/store"
)

type result struct {
	stdout string
	stderr string
	err    error
}

// run executes the root command in a fresh environment: no config file and
// a file store inside a temporary directory.
func run(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	opts := &globalOptions{}
	root := newRootCommand(opts)

	var stdout, stderr bytes.Buffer
	root.SetArgs(append([]string{"--no-color"}, args...))
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&stdout)
	root.SetErr(&stderr)

	err := root.Execute()
	if err != nil {
		stderr.WriteString(formatError(err, true))
	}
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	t.Setenv("EXTMODEL_STORE_DIR", filepath.Join(dir, "store"))
	t.Setenv("EXTMODEL_LOG_LEVEL", "error")
	return dir
}

func carsExtension(name string, ops ...string) *model.ExtensionModel {
	ext := &model.ExtensionModel{
		Name:     name,
		Version:  "1.0.0",
		Vendor:   "Acme",
		Category: model.CategoryCommunity,
		XmlDsl:   model.XmlDslModel{Prefix: name, Namespace: "http://acme.com/" + name},
		Errors: []*model.ErrorModel{
			model.NewErrorModel("CARS", "NOT_FOUND", model.NewErrorModel("MULE", "ANY", nil)),
		},
		Types: []*metadata.Type{
			metadata.Object("org.acme.Car").RequiredField("id", metadata.String()).Field("model", metadata.String()).Build(),
		},
	}
	for _, op := range ops {
		ext.Operations = append(ext.Operations, &model.OperationModel{
			ParameterizedModel: model.ParameterizedModel{
				Name: op,
				ParameterGroups: []*model.ParameterGroupModel{{
					Name: model.DefaultGroupName,
					Parameters: []*model.ParameterModel{{
						Name:              "id",
						Type:              metadata.String(),
						Required:          true,
						ExpressionSupport: model.ExpressionSupported,
						Role:              model.RoleBehaviour,
					}},
				}},
			},
			Blocking: true,
		})
	}
	return ext
}

func writeDocument(t *testing.T, dir string, ext *model.ExtensionModel) string {
	t.Helper()
	s, err := persistence.NewSerializer()
	require.NoError(t, err)
	data, err := s.Serialize(ext)
	require.NoError(t, err)
	path := filepath.Join(dir, ext.Name+".json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestNewRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	assert.Equal(t, "extmodel", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)

	for _, name := range []string{"version", "inspect", "roundtrip", "validate", "store"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, sub.Name())
	}
	for _, name := range []string{"push", "pull", "list", "find", "delete"} {
		sub, _, err := cmd.Find([]string{"store", name})
		require.NoError(t, err)
		assert.Equal(t, name, sub.Name())
	}

	for _, flag := range []string{"config", "log-level", "no-color"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), flag)
	}
}

func TestVersionCommand(t *testing.T) {
	Version = "1.0.0-test"
	GitCommit = "abc123"
	defer func() { Version, GitCommit = "dev", "unknown" }()

	res := run(t, "", "version")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "1.0.0-test")
	assert.Contains(t, res.stdout, "abc123")
	assert.Contains(t, res.stdout, "Go version: ")
}

func TestInspectCommand(t *testing.T) {
	dir := setupEnv(t)
	path := writeDocument(t, dir, carsExtension("cars", "getCar", "listCars"))

	res := run(t, "", "inspect", path)
	require.NoError(t, res.err, res.stderr)

	assert.Contains(t, res.stdout, "Name:")
	assert.Contains(t, res.stdout, "Components (2)")
	assert.Contains(t, res.stdout, "operation  getCar")
	assert.Contains(t, res.stdout, "Errors (2)")
	assert.Contains(t, res.stdout, "CARS:NOT_FOUND  MULE:ANY  true")
	assert.Contains(t, res.stdout, "Types (1)")
	assert.Contains(t, res.stdout, "org.acme.Car")
	assert.Contains(t, res.stdout, "id, model")
}

func TestInspectCommand_Stdin(t *testing.T) {
	dir := setupEnv(t)
	data, err := os.ReadFile(writeDocument(t, dir, carsExtension("cars", "getCar")))
	require.NoError(t, err)

	res := run(t, string(data), "inspect", "-")
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stdout, "getCar")
}

func TestInspectCommand_InvalidDocument(t *testing.T) {
	dir := setupEnv(t)
	path := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"name":"cars","errors":[],"operations":[{"name":"getCar"}]}`), 0o644))

	res := run(t, "", "inspect", path)
	require.Error(t, res.err)
	assert.True(t, errors.Is(res.err, persistence.ErrMissingKind))
	assert.Contains(t, res.stderr, "INVALID DOCUMENT: S003 at operations[0]")
	assert.Contains(t, res.stderr, "Invalid json. Property kind wasn't specified")

	res = run(t, "", "inspect", filepath.Join(dir, "missing.json"))
	require.Error(t, res.err)
	assert.Contains(t, res.stderr, "failed to read")
}

func TestRoundtripCommand(t *testing.T) {
	dir := setupEnv(t)
	path := writeDocument(t, dir, carsExtension("cars", "getCar"))

	res := run(t, "", "roundtrip", path)
	require.NoError(t, res.err, res.stderr)
	assert.True(t, json.Valid([]byte(res.stdout)))
	assert.Contains(t, res.stdout, "\n  \"name\": \"cars\"", "indented by default")

	out := filepath.Join(dir, "out.json")
	res = run(t, "", "roundtrip", "--indent=false", "-o", out, path)
	require.NoError(t, res.err, res.stderr)
	assert.Empty(t, res.stdout)

	written, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(written), `{"name":"cars"`))
}

func TestValidateCommand(t *testing.T) {
	dir := setupEnv(t)
	good := writeDocument(t, dir, carsExtension("cars", "getCar"))
	bad := writeDocument(t, dir, carsExtension("dupes", "getCar", "getCar"))

	res := run(t, "", "validate", good)
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stdout, "✓ "+good+" is valid")

	res = run(t, "", "validate", good, bad)
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "1 of 2 documents are invalid")
	assert.Contains(t, res.stdout, good+" is valid")
	assert.Contains(t, res.stderr, bad+":")
	assert.Contains(t, res.stderr, "getCar")
}

func TestValidateCommand_Directory(t *testing.T) {
	dir := filepath.Join(setupEnv(t), "plugins")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	first := writeDocument(t, dir, carsExtension("cars", "getCar"))
	second := writeDocument(t, dir, carsExtension("trucks", "getTruck"))

	res := run(t, "", "validate", dir)
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stdout, first+" is valid")
	assert.Contains(t, res.stdout, second+" is valid")
}

func TestStoreCommands(t *testing.T) {
	dir := setupEnv(t)
	cars := writeDocument(t, dir, carsExtension("cars", "getCar", "listCars"))
	boats := writeDocument(t, dir, carsExtension("boats", "getBoat"))

	res := run(t, "", "store", "list")
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stdout, "No documents stored yet")

	res = run(t, "", "store", "push", cars)
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stdout, "stored cars (2 operations, 2 errors)")
	res = run(t, "", "store", "push", boats)
	require.NoError(t, res.err, res.stderr)

	stored, err := store.Open(context.Background(), store.Options{Backend: store.BackendFile, Dir: filepath.Join(dir, "store"), Compress: true})
	require.NoError(t, err)
	names, err := stored.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"boats", "cars"}, names)

	res = run(t, "", "store", "list")
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stdout, "NAME")
	assert.Contains(t, res.stdout, "cars   1.0.0    Acme    2           2")

	res = run(t, "", "store", "find", "get*")
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stdout, "getCar")
	assert.Contains(t, res.stdout, "getBoat")
	assert.NotContains(t, res.stdout, "listCars")

	res = run(t, "", "store", "find", "sell*")
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stdout, `no operation matches "sell*"`)

	res = run(t, "", "store", "pull", "cars")
	require.NoError(t, res.err, res.stderr)
	original, err := os.ReadFile(cars)
	require.NoError(t, err)
	assert.Equal(t, string(original)+"\n", res.stdout)

	res = run(t, "", "store", "pull", "crs")
	require.Error(t, res.err)
	assert.True(t, errors.Is(res.err, store.ErrNotFound))
	assert.Contains(t, res.stderr, "Did you mean: cars?")

	res = run(t, "", "store", "delete", "cars")
	require.NoError(t, res.err, res.stderr)
	res = run(t, "", "store", "pull", "cars")
	assert.True(t, errors.Is(res.err, store.ErrNotFound))
}

func TestStorePush_InvalidDocument(t *testing.T) {
	dir := setupEnv(t)
	path := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"name":"cars"}`), 0o644))

	res := run(t, "", "store", "push", path)
	require.Error(t, res.err)
	assert.True(t, errors.Is(res.err, persistence.ErrMissingKey))

	res = run(t, "", "store", "list")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "No documents stored yet")
}

func TestConfigErrors(t *testing.T) {
	setupEnv(t)
	t.Setenv("EXTMODEL_STORE_BACKEND", "s3")

	res := run(t, "", "store", "list")
	require.Error(t, res.err)
	assert.Contains(t, res.stderr, "CONFIGURATION ERROR")

	res = run(t, "", "--config", "missing.yaml", "version")
	require.NoError(t, res.err, "version does not need configuration")
}
