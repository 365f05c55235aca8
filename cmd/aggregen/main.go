package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Station-Manager/iocagg/internal/gen"
)

var (
	dstPkgFlag  = flag.String("pkg", "", "Package name of generated code")
	dstFileFlag = flag.String("file", "", "Output file path")
	verboseFlag = flag.Bool("verbose", false, "Print every generated method")
)

func main() {
	flag.Usage = printUsage
	flag.Parse()
	os.Exit(run(flag.Args()))
}

func run(args []string) int {
	reporter := gen.NewReporter(os.Stderr, *verboseFlag)

	if len(args) < 1 || args[0] == "" {
		fmt.Fprintf(os.Stderr, "source package is missing\n\n%s\n", usage)
		return 2
	}

	srcPkg, err := gen.LoadPackage(".", args[0])
	if err != nil {
		reporter.Error("failed to load package", err)
		return 1
	}

	dstPkgPath := srcPkg.Path()
	dstPkgName := srcPkg.Name()
	if *dstFileFlag != "" {
		path, err := gen.ResolvePackagePath(filepath.Dir(*dstFileFlag))
		if err != nil {
			reporter.Warning(fmt.Sprintf("failed to resolve destination package path, using '%s'", dstPkgPath), err)
		} else {
			dstPkgPath = path
		}
	}
	if *dstPkgFlag != "" {
		dstPkgName = *dstPkgFlag
	}

	aggregators, err := gen.FindAggregators(srcPkg, gen.ParseOptions(args[1:]))
	if err != nil {
		reporter.Error("failed to find aggregators to generate", err)
		return 1
	}
	for _, agg := range aggregators {
		reporter.Verbose("%s.%s -> %s (%d methods)", srcPkg.Name(), agg.IfaceName, agg.AdapterName, agg.Iface.NumMethods())
	}

	code, err := gen.Generate(gen.Config{
		DstPkgName:  dstPkgName,
		DstPkgPath:  dstPkgPath,
		Aggregators: aggregators,
	})
	if err != nil {
		reporter.Error("failed to generate code", err)
		return 1
	}

	if *dstFileFlag == "" {
		if _, err := os.Stdout.Write(code); err != nil {
			reporter.Error("write code", err)
			return 1
		}
		return 0
	}
	if err := os.WriteFile(*dstFileFlag, code, 0o644); err != nil {
		reporter.Error("write code", err)
		return 1
	}
	reporter.Success("wrote %d aggregator(s) to %s", len(aggregators), *dstFileFlag)
	return 0
}

const usage = `aggregen -pkg=[destination package name] -file=[output file path] [-verbose] [source package] [interfaces]...
	[destination package name] - Package name of generated code. If empty, source package name will be used.
	[output file path]         - Path to output file. If empty, stdout will be used.
	[source package]           - Package pattern whose interfaces become aggregators.
	[interfaces]               - Interface names, optionally 'Iface->AdapterName'. If empty, every exported interface is used.`

func printUsage() {
	fmt.Fprintf(os.Stderr, "%s\n", usage)
}
