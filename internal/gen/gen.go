// Package gen writes the adapters that let an aggregator.Proxy implement an aggregator interface.
package gen

import (
	"bytes"
	"go/format"
	"go/types"
	"sort"
	"strconv"
	"strings"
	"text/template"

	"github.com/pkg/errors"
)

const aggregatorPath = "github.com/Station-Manager/iocagg/aggregator"

// Aggregator is one interface to generate an adapter for.
type Aggregator struct {
	IfaceName   string
	Iface       *types.Interface
	AdapterName string
	// Pkg is the package declaring the interface; nil means the destination package.
	Pkg *types.Package
}

// Config describes one generated file.
type Config struct {
	DstPkgName string
	DstPkgPath string
	Aggregators []Aggregator
}

type importSpec struct {
	Alias string
	Path  string
}

type methodData struct {
	Name    string
	Params  string
	Results string
	Kind    string // "must", "get" or "unmatched"
	Bean    string
}

type adapterData struct {
	IfaceName   string
	AdapterName string
	Methods     []methodData
}

type fileData struct {
	PkgName  string
	Imports  []importSpec
	Adapters []adapterData
}

var fileTemplate = template.Must(template.New("aggregators").Parse(`// Code generated by aggregen. DO NOT EDIT.

package {{.PkgName}}

import (
{{- range .Imports}}
	{{.Alias}} "{{.Path}}"
{{- end}}
)
{{range .Adapters}}{{$adapter := .AdapterName}}
// {{.AdapterName}} implements {{.IfaceName}} by resolving each method's result from the container.
type {{.AdapterName}} struct {
	Proxy *aggregator.Proxy
}

func New{{.AdapterName}}(p *aggregator.Proxy) {{.IfaceName}} {
	return &{{.AdapterName}}{Proxy: p}
}
{{range .Methods}}
func (a *{{$adapter}}) {{.Name}}({{.Params}}) {{.Results}} {
{{- if eq .Kind "must"}}
	return aggregator.MustGet[{{.Bean}}](a.Proxy, "{{.Name}}")
{{- else if eq .Kind "get"}}
	return aggregator.Get[{{.Bean}}](a.Proxy, "{{.Name}}")
{{- else}}
	a.Proxy.Unmatched("{{.Name}}")
	return
{{- end}}
}
{{end}}{{end}}`))

// Generate renders and formats the adapters described by cfg.
func Generate(cfg Config) ([]byte, error) {
	if cfg.DstPkgName == "" {
		return nil, errors.New("destination package name is empty")
	}

	imports := newImportSet(cfg.DstPkgPath)
	imports.add(aggregatorPath, "aggregator")

	data := fileData{PkgName: cfg.DstPkgName}
	for _, agg := range cfg.Aggregators {
		if agg.Iface == nil {
			return nil, errors.Errorf("interface='%s' has no type information", agg.IfaceName)
		}
		adapter := adapterData{IfaceName: agg.IfaceName, AdapterName: agg.AdapterName}
		if adapter.AdapterName == "" {
			adapter.AdapterName = agg.IfaceName + "Aggregator"
		}
		if alias := imports.qualifier(agg.Pkg); alias != "" {
			adapter.IfaceName = alias + "." + agg.IfaceName
		}
		for i := 0; i < agg.Iface.NumMethods(); i++ {
			adapter.Methods = append(adapter.Methods, describeMethod(agg.Iface.Method(i), imports.qualifier))
		}
		data.Adapters = append(data.Adapters, adapter)
	}
	data.Imports = imports.specs()

	var buf bytes.Buffer
	if err := fileTemplate.Execute(&buf, data); err != nil {
		return nil, errors.Wrap(err, "render adapters")
	}
	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		return buf.Bytes(), errors.Wrap(err, "format adapters")
	}
	return formatted, nil
}

func describeMethod(fn *types.Func, q types.Qualifier) methodData {
	sig := fn.Type().(*types.Signature)
	md := methodData{Name: fn.Name(), Kind: "unmatched"}

	params := make([]string, 0, sig.Params().Len())
	for i := 0; i < sig.Params().Len(); i++ {
		t := sig.Params().At(i).Type()
		if sig.Variadic() && i == sig.Params().Len()-1 {
			params = append(params, "_ ..."+types.TypeString(t.(*types.Slice).Elem(), q))
			continue
		}
		params = append(params, "_ "+types.TypeString(t, q))
	}
	md.Params = strings.Join(params, ", ")

	results := make([]string, 0, sig.Results().Len())
	for i := 0; i < sig.Results().Len(); i++ {
		results = append(results, types.TypeString(sig.Results().At(i).Type(), q))
	}

	switch {
	case IsTarget(fn) && len(results) == 1:
		md.Kind = "must"
		md.Bean = results[0]
		md.Results = results[0]
	case IsTarget(fn):
		md.Kind = "get"
		md.Bean = results[0]
		md.Results = "(" + strings.Join(results, ", ") + ")"
	case len(results) > 0:
		named := make([]string, len(results))
		for i, r := range results {
			named[i] = "_ " + r
		}
		md.Results = "(" + strings.Join(named, ", ") + ")"
	}
	return md
}

var errorType = types.Universe.Lookup("error").Type()

// IsTarget mirrors aggregator.IsTarget for go/types methods.
func IsTarget(fn *types.Func) bool {
	sig := fn.Type().(*types.Signature)
	if sig.Params().Len() != 0 || IsUniversal(fn) {
		return false
	}
	res := sig.Results()
	switch res.Len() {
	case 1:
		return !types.Identical(res.At(0).Type(), errorType)
	case 2:
		return !types.Identical(res.At(0).Type(), errorType) && types.Identical(res.At(1).Type(), errorType)
	default:
		return false
	}
}

// IsUniversal reports whether fn is String() string, GoString() string or Error() string.
func IsUniversal(fn *types.Func) bool {
	switch fn.Name() {
	case "String", "GoString", "Error":
	default:
		return false
	}
	sig := fn.Type().(*types.Signature)
	return sig.Params().Len() == 0 && sig.Results().Len() == 1 &&
		types.Identical(sig.Results().At(0).Type(), types.Typ[types.String])
}

type importSet struct {
	self    string
	byPath  map[string]string
	aliases map[string]bool
}

func newImportSet(self string) *importSet {
	return &importSet{self: self, byPath: map[string]string{}, aliases: map[string]bool{}}
}

func (s *importSet) add(path, name string) string {
	if alias, ok := s.byPath[path]; ok {
		return alias
	}
	alias := name
	for i := 2; s.aliases[alias]; i++ {
		alias = name + strconv.Itoa(i)
	}
	s.byPath[path] = alias
	s.aliases[alias] = true
	return alias
}

func (s *importSet) qualifier(p *types.Package) string {
	if p == nil || p.Path() == s.self {
		return ""
	}
	return s.add(p.Path(), p.Name())
}

func (s *importSet) specs() []importSpec {
	out := make([]importSpec, 0, len(s.byPath))
	for path, alias := range s.byPath {
		out = append(out, importSpec{Alias: alias, Path: path})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}
