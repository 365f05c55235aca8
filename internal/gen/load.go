package gen

import (
	"go/types"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/mod/modfile"
	"golang.org/x/tools/go/packages"
)

// LoadPackage type-checks the package matching pattern, resolved relative to dir.
func LoadPackage(dir, pattern string) (*types.Package, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedTypes | packages.NeedImports | packages.NeedDeps,
		Dir:  dir,
	}
	pkgs, err := packages.Load(cfg, pattern)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", pattern)
	}
	if len(pkgs) != 1 {
		return nil, errors.Errorf("pattern '%s' matched %d packages, want 1", pattern, len(pkgs))
	}
	pkg := pkgs[0]
	if len(pkg.Errors) > 0 {
		return nil, errors.Errorf("package '%s': %v", pattern, pkg.Errors[0])
	}
	return pkg.Types, nil
}

// ParseOptions parses "Iface" and "Iface->Adapter" arguments into interface name to adapter name.
func ParseOptions(options []string) map[string]string {
	names := make(map[string]string, len(options))
	for _, option := range options {
		split := strings.SplitN(option, "->", 2)
		var adapterName string
		if len(split) == 2 {
			adapterName = split[1]
		}
		names[split[0]] = adapterName
	}
	return names
}

// FindAggregators selects the named interfaces of pkg listed in options, or every named interface
// when options is empty.
func FindAggregators(pkg *types.Package, options map[string]string) ([]Aggregator, error) {
	ifaces := findNamedInterfaces(pkg)
	if len(options) == 0 {
		options = make(map[string]string, len(ifaces))
		for name := range ifaces {
			options[name] = ""
		}
	}

	names := make([]string, 0, len(options))
	for name := range options {
		names = append(names, name)
	}
	sort.Strings(names)

	aggregators := make([]Aggregator, 0, len(names))
	for _, name := range names {
		iface, found := ifaces[name]
		if !found {
			return nil, errors.Errorf("interface='%s' not found", name)
		}
		adapterName := options[name]
		if adapterName == "" {
			adapterName = name + "Aggregator"
		}
		aggregators = append(aggregators, Aggregator{
			IfaceName:   name,
			Iface:       iface,
			AdapterName: adapterName,
			Pkg:         pkg,
		})
	}
	return aggregators, nil
}

func findNamedInterfaces(pkg *types.Package) map[string]*types.Interface {
	items := map[string]*types.Interface{}
	scope := pkg.Scope()
	for _, name := range scope.Names() {
		obj, ok := scope.Lookup(name).(*types.TypeName)
		if !ok || !obj.Exported() {
			continue
		}
		named, ok := obj.Type().(*types.Named)
		if !ok || named.TypeParams().Len() > 0 {
			continue
		}
		iface, ok := named.Underlying().(*types.Interface)
		if !ok || !iface.IsMethodSet() {
			continue
		}
		items[name] = iface
	}
	return items
}

// ResolvePackagePath derives the import path of dir from the nearest enclosing go.mod.
func ResolvePackagePath(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for current := abs; ; {
		goModPath := filepath.Join(current, "go.mod")
		content, err := os.ReadFile(goModPath)
		if err == nil {
			modPath := modfile.ModulePath(content)
			if modPath == "" {
				return "", errors.Errorf("no module declaration in %s", goModPath)
			}
			rel, err := filepath.Rel(current, abs)
			if err != nil {
				return "", err
			}
			if rel == "." {
				return modPath, nil
			}
			return modPath + "/" + filepath.ToSlash(rel), nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", errors.Errorf("go.mod not found above %s", abs)
		}
		current = parent
	}
}
