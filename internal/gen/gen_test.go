package gen

import (
	"bytes"
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const source = `package school

import "time"

type StudentService struct{}

type Clock interface{ Now() time.Time }

type Service interface {
	StudentService() *StudentService
	Clock() (Clock, error)
	String() string
	Find(id string, more ...int) (*StudentService, error)
	Close() error
}

type Other interface {
	Ping()
}

type unexported interface{ Hidden() int }

type Number interface{ ~int }
`

func checkSource(t *testing.T) *types.Package {
	t.Helper()
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "school.go", source, 0)
	require.NoError(t, err)
	conf := types.Config{Importer: importer.ForCompiler(fset, "source", nil)}
	pkg, err := conf.Check("example.com/school", fset, []*ast.File{file}, nil)
	require.NoError(t, err)
	return pkg
}

func TestFindAggregators(t *testing.T) {
	pkg := checkSource(t)

	all, err := FindAggregators(pkg, nil)
	require.NoError(t, err)
	names := make([]string, 0, len(all))
	for _, a := range all {
		names = append(names, a.IfaceName+"->"+a.AdapterName)
	}
	assert.Equal(t, []string{"Clock->ClockAggregator", "Other->OtherAggregator", "Service->ServiceAggregator"}, names)

	picked, err := FindAggregators(pkg, ParseOptions([]string{"Service->Services"}))
	require.NoError(t, err)
	require.Len(t, picked, 1)
	assert.Equal(t, "Services", picked[0].AdapterName)

	_, err = FindAggregators(pkg, ParseOptions([]string{"Missing"}))
	assert.EqualError(t, err, "interface='Missing' not found")
}

func TestGenerate_SamePackage(t *testing.T) {
	pkg := checkSource(t)
	aggs, err := FindAggregators(pkg, ParseOptions([]string{"Service"}))
	require.NoError(t, err)

	code, err := Generate(Config{DstPkgName: "school", DstPkgPath: "example.com/school", Aggregators: aggs})
	require.NoError(t, err)
	out := string(code)

	assert.Contains(t, out, "// Code generated by aggregen. DO NOT EDIT.")
	assert.Contains(t, out, `aggregator "github.com/Station-Manager/iocagg/aggregator"`)
	assert.Contains(t, out, "func NewServiceAggregator(p *aggregator.Proxy) Service {")
	assert.Contains(t, out, `return aggregator.MustGet[*StudentService](a.Proxy, "StudentService")`)
	assert.Contains(t, out, `return aggregator.Get[Clock](a.Proxy, "Clock")`)
	assert.Contains(t, out, "func (a *ServiceAggregator) Find(_ string, _ ...int) (_ *StudentService, _ error) {")
	assert.Contains(t, out, `a.Proxy.Unmatched("Find")`)
	assert.Contains(t, out, `a.Proxy.Unmatched("String")`)
	assert.Contains(t, out, `a.Proxy.Unmatched("Close")`)
	assert.NotContains(t, out, `"example.com/school"`)

	_, err = parser.ParseFile(token.NewFileSet(), "out.go", code, 0)
	assert.NoError(t, err)
}

func TestGenerate_OtherPackage(t *testing.T) {
	pkg := checkSource(t)
	aggs, err := FindAggregators(pkg, ParseOptions([]string{"Service"}))
	require.NoError(t, err)

	code, err := Generate(Config{DstPkgName: "wiring", DstPkgPath: "example.com/wiring", Aggregators: aggs})
	require.NoError(t, err)
	out := string(code)

	assert.Contains(t, out, `school "example.com/school"`)
	assert.Contains(t, out, "func NewServiceAggregator(p *aggregator.Proxy) school.Service {")
	assert.Contains(t, out, `aggregator.MustGet[*school.StudentService]`)
}

func TestGenerate_RequiresPackageName(t *testing.T) {
	_, err := Generate(Config{})
	assert.Error(t, err)
}

func TestIsTargetAndUniversal(t *testing.T) {
	pkg := checkSource(t)
	iface := pkg.Scope().Lookup("Service").Type().Underlying().(*types.Interface)

	want := map[string]bool{
		"StudentService": true,
		"Clock":          true,
		"String":         false,
		"Find":           false,
		"Close":          false,
	}
	for i := 0; i < iface.NumMethods(); i++ {
		fn := iface.Method(i)
		assert.Equal(t, want[fn.Name()], IsTarget(fn), fn.Name())
		assert.Equal(t, fn.Name() == "String", IsUniversal(fn), fn.Name())
	}
}

func TestResolvePackagePath(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "go.mod"), []byte("module example.com/app\n\ngo 1.25\n"), 0o644))
	nested := filepath.Join(root, "internal", "wiring")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	path, err := ResolvePackagePath(nested)
	require.NoError(t, err)
	assert.Equal(t, "example.com/app/internal/wiring", path)

	path, err = ResolvePackagePath(root)
	require.NoError(t, err)
	assert.Equal(t, "example.com/app", path)
}

func TestReporter(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf, false)
	r.Verbose("hidden %d", 1)
	r.Success("wrote %d", 2)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "wrote 2")

	buf.Reset()
	NewReporter(&buf, true).Verbose("shown %d", 3)
	assert.Contains(t, buf.String(), "shown 3")
}
