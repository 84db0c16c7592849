package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	stbridge "github.com/key-o/stb-diff-viewer-sub000"
)

// config mirrors the command-line flags so deployments can keep their
// settings in a file.
type config struct {
	SchemaDirs   []string `yaml:"schemaDirs"`
	Version      string   `yaml:"version"`
	IncludeInfo  bool     `yaml:"includeInfo"`
	SkipGeometry bool     `yaml:"skipGeometry"`
	Repair       struct {
		Enabled        bool     `yaml:"enabled"`
		UseDefaults    bool     `yaml:"useDefaults"`
		RemoveInvalid  bool     `yaml:"removeInvalid"`
		SkipCategories []string `yaml:"skipCategories"`
		Output         string   `yaml:"output"`
	} `yaml:"repair"`
}

func main() {
	var (
		configPath   = flag.String("config", "", "YAML config file")
		schemaDirs   = flag.String("schema-dirs", "schemas", "comma-separated schema search directories")
		version      = flag.String("version", "", "schema version to validate against (default: from document)")
		includeInfo  = flag.Bool("info", false, "include info-severity issues")
		skipGeometry = flag.Bool("skip-geometry", false, "skip the geometry layer")
		repair       = flag.Bool("repair", false, "attempt repairs and write the repaired document")
		repairOut    = flag.String("repair-out", "repaired.stb", "output path for the repaired document")
		jsonOut      = flag.Bool("json", false, "emit the report as JSON instead of text")
		verbose      = flag.Bool("v", false, "verbose logging")
	)
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: stbcheck [flags] <stb-file>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg := config{
		SchemaDirs:   strings.Split(*schemaDirs, ","),
		Version:      *version,
		IncludeInfo:  *includeInfo,
		SkipGeometry: *skipGeometry,
	}
	cfg.Repair.Enabled = *repair
	cfg.Repair.UseDefaults = true
	cfg.Repair.RemoveInvalid = true
	cfg.Repair.Output = *repairOut

	if *configPath != "" {
		data, err := os.ReadFile(*configPath)
		if err != nil {
			fatalf("failed to read config: %v", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			fatalf("failed to parse config: %v", err)
		}
	}

	logger := zap.NewNop()
	if *verbose {
		var err error
		logger, err = zap.NewDevelopment()
		if err != nil {
			fatalf("failed to build logger: %v", err)
		}
	}
	defer logger.Sync()

	path := flag.Arg(0)
	f, err := os.Open(path)
	if err != nil {
		fatalf("failed to open document: %v", err)
	}
	doc, err := stbridge.ParseDocument(f)
	f.Close()
	if err != nil {
		fatalf("%v", err)
	}

	docVersion := resolveVersion(cfg.Version, doc)

	loader := stbridge.NewSourceLoader(cfg.SchemaDirs, logger)
	registry := stbridge.NewSchemaRegistry(loader, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if docVersion != "" {
		if err := registry.LoadSchema(ctx, docVersion); err != nil {
			// Operating without a schema still yields the structural,
			// reference and geometry layers.
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}
	}

	validator := stbridge.NewDocumentValidator(registry)
	report := validator.Validate(doc, stbridge.ValidatorOptions{
		SchemaVersion: docVersion,
		IncludeInfo:   cfg.IncludeInfo,
		SkipGeometry:  cfg.SkipGeometry,
	})

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			fatalf("failed to encode report: %v", err)
		}
	} else {
		fmt.Print(report.Render())
	}

	if cfg.Repair.Enabled && report.Statistics.RepairableCount > 0 {
		engine := stbridge.NewRepairEngine(logger)
		var skip []stbridge.Category
		for _, c := range cfg.Repair.SkipCategories {
			skip = append(skip, stbridge.Category(c))
		}
		repaired, repairReport := engine.Repair(doc, report, stbridge.RepairOptions{
			UseDefaults:    cfg.Repair.UseDefaults,
			RemoveInvalid:  cfg.Repair.RemoveInvalid,
			SkipCategories: skip,
		})

		fmt.Println()
		fmt.Print(repairReport.Render())

		out, err := os.Create(cfg.Repair.Output)
		if err != nil {
			fatalf("failed to create repaired output: %v", err)
		}
		if err := stbridge.WriteXML(out, repaired); err != nil {
			out.Close()
			fatalf("failed to write repaired document: %v", err)
		}
		out.Close()
		fmt.Printf("\nRepaired document written to %s\n", cfg.Repair.Output)
	}

	if !report.Valid {
		os.Exit(1)
	}
}

func resolveVersion(flagVersion string, doc *stbridge.Node) stbridge.SchemaVersion {
	if flagVersion != "" {
		if v, ok := stbridge.ParseVersion(flagVersion); ok {
			return v
		}
		fatalf("unknown schema version %q", flagVersion)
	}
	if v, ok := stbridge.ParseVersion(doc.AttrValue("version")); ok {
		return v
	}
	return ""
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
