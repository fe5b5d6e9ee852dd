package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/batchatco/go-netcdf-catalog/internal"
	"github.com/batchatco/go-netcdf-catalog/netcdf"
	"github.com/batchatco/go-netcdf-catalog/netcdf/api"
	"github.com/batchatco/go-netcdf-catalog/netcdf/scan"
)

const version = "0.1.0"

type option struct {
	name, usage, shorthand string
	defaultVal             any
	persistent             bool
}

var options = []option{
	{
		name:       "config",
		usage:      "config specifies the configuration file location.",
		defaultVal: "",
		persistent: true,
	},
	{
		name:       "log-level",
		usage:      "log-level is the lowest diagnostic level printed: fatal, error, warn or info.",
		defaultVal: internal.LogLevelDefault.String(),
		persistent: true,
	},
	{
		name:       "lazy-grids",
		usage:      "lazy-grids defers coordinate reads until they are printed.",
		defaultVal: false,
	},
	{
		name:       "cell-corners",
		usage:      "cell-corners reads coordinate bounds.",
		defaultVal: true,
	},
	{
		name:       "cell-centers",
		usage:      "cell-centers reads coordinate values.",
		defaultVal: true,
	},
	{
		name:       "ignore-valid-range",
		usage:      "ignore-valid-range skips valid_range, valid_min and valid_max.",
		defaultVal: false,
	},
	{
		name:       "chunk-cache-max",
		usage:      "chunk-cache-max caps the computed chunk cache size in bytes; 0 is no cap.",
		defaultVal: 0,
	},
	{
		name:       "sort",
		usage:      "sort lists data variables by name instead of file order.",
		defaultVal: false,
	},
	{
		name:       "cubesphere",
		usage:      "cubesphere enables cubed-sphere grid detection.",
		defaultVal: true,
	},
	{
		name:       "gaussian-tolerance",
		usage:      "gaussian-tolerance is the relative latitude spacing below which rows are regular.",
		defaultVal: scan.DefaultGaussianTolerance,
	},
	{
		name:       "vars",
		shorthand:  "v",
		usage:      "vars restricts the catalog to the named variables.",
		defaultVal: []string{},
	},
	{
		name:       "steps",
		usage:      "steps restricts the catalog to the given 1-based time steps.",
		defaultVal: []int{},
	},
	{
		name:       "cells",
		usage:      "cells selects a 1-based start and a count of unstructured cells, as start,count.",
		defaultVal: []int{},
	},
	{
		name:       "metrics",
		usage:      "metrics prints the scan metrics after the catalogs.",
		defaultVal: false,
	},
}

// newRoot builds the command tree around cfg. Output goes to out.
func newRoot(cfg *viper.Viper, out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "ncscan",
		Short: "Catalog the data variables of NetCDF files.",
		Long: `ncscan classifies the dimensions and variables of NetCDF files and prints
the catalog of their data variables with grids, vertical axes and time steps.

Configuration can be set in a configuration file (given with --config), with
command-line flags, or with environment variables named 'NCSCAN_var' where
'var' is the flag name in upper case with dashes replaced by underscores.`,
		SilenceUsage: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return setConfig(cfg)
		},
	}
	root.SetOut(out)

	scanCmd := &cobra.Command{
		Use:   "scan FILE...",
		Short: "Scan files and print their catalogs.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cfg, cmd.OutOrStdout(), args)
		},
	}
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("ncscan v%s\n", version)
		},
	}
	root.AddCommand(scanCmd, versionCmd)

	cfg.SetEnvPrefix("NCSCAN")
	cfg.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	cfg.AutomaticEnv()
	for _, o := range options {
		set := scanCmd.Flags()
		if o.persistent {
			set = root.PersistentFlags()
		}
		addFlag(set, o)
		cfg.BindPFlag(o.name, set.Lookup(o.name))
	}
	return root
}

func addFlag(set *pflag.FlagSet, o option) {
	switch v := o.defaultVal.(type) {
	case string:
		set.StringP(o.name, o.shorthand, v, o.usage)
	case []string:
		set.StringSliceP(o.name, o.shorthand, v, o.usage)
	case bool:
		set.BoolP(o.name, o.shorthand, v, o.usage)
	case int:
		set.IntP(o.name, o.shorthand, v, o.usage)
	case []int:
		set.IntSliceP(o.name, o.shorthand, v, o.usage)
	case float64:
		set.Float64P(o.name, o.shorthand, v, o.usage)
	default:
		panic("invalid argument type")
	}
}

// setConfig reads the configuration file, if there is one.
func setConfig(cfg *viper.Viper) error {
	if path := cfg.GetString("config"); path != "" {
		cfg.SetConfigFile(path)
		if err := cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("ncscan: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// scanConfig builds the scan configuration from cfg.
func scanConfig(cfg *viper.Viper) (scan.Config, error) {
	c := scan.DefaultConfig()
	level, err := internal.ParseLogLevel(cfg.GetString("log-level"))
	if err != nil {
		return c, fmt.Errorf("ncscan: %v", err)
	}
	c.LogLevel = level
	c.LazyGrids = cfg.GetBool("lazy-grids")
	c.ReadCellCorners = cfg.GetBool("cell-corners")
	c.ReadCellCenters = cfg.GetBool("cell-centers")
	c.IgnoreValidRange = cfg.GetBool("ignore-valid-range")
	c.SortVarNames = cfg.GetBool("sort")
	c.ConvertCubeSphere = cfg.GetBool("cubesphere")
	c.GaussianTolerance = cfg.GetFloat64("gaussian-tolerance")
	cacheMax, err := cast.ToUint64E(cfg.Get("chunk-cache-max"))
	if err != nil {
		return c, fmt.Errorf("ncscan: chunk-cache-max: %v", err)
	}
	c.ChunkCacheMax = cacheMax

	f := &api.Filter{
		Names: cast.ToStringSlice(cfg.Get("vars")),
	}
	steps, err := cast.ToIntSliceE(cfg.Get("steps"))
	if err != nil {
		return c, fmt.Errorf("ncscan: steps: %v", err)
	}
	f.Steps = steps
	cells, err := cast.ToIntSliceE(cfg.Get("cells"))
	if err != nil {
		return c, fmt.Errorf("ncscan: cells: %v", err)
	}
	switch len(cells) {
	case 0:
	case 2:
		f.CellStart, f.CellCount = cells[0], cells[1]
	default:
		return c, fmt.Errorf("ncscan: cells wants start,count, got %v", cells)
	}
	if f.NumNames() > 0 || f.NumSteps() > 0 || f.CellStart > 0 {
		c.Query = f
	}
	return c, c.Validate()
}

func runScan(cfg *viper.Viper, out io.Writer, files []string) error {
	c, err := scanConfig(cfg)
	if err != nil {
		return err
	}
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	c.Logger = logger

	reg := prometheus.NewRegistry()
	c.Metrics = scan.NewMetrics(reg)

	var failed int
	for _, fname := range files {
		logger.WithField("file", fname).Info("scanning")
		d, err := netcdf.Open(fname, c)
		if err != nil {
			logger.WithField("file", fname).Errorf("scan failed: %v", err)
			failed++
			continue
		}
		err = writeCatalog(out, fname, d.Catalog)
		d.Close()
		if err != nil {
			return err
		}
	}
	if cfg.GetBool("metrics") {
		if err := writeMetrics(out, reg); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("ncscan: %d of %d files failed", failed, len(files))
	}
	return nil
}

// writeMetrics prints counters and histogram counts as name{labels} value.
func writeMetrics(w io.Writer, g prometheus.Gatherer) error {
	mfs, err := g.Gather()
	if err != nil {
		return err
	}
	for _, mf := range mfs {
		for _, m := range mf.GetMetric() {
			var labels []string
			for _, lp := range m.GetLabel() {
				labels = append(labels, fmt.Sprintf("%s=%q", lp.GetName(), lp.GetValue()))
			}
			lbl := ""
			if len(labels) > 0 {
				lbl = "{" + strings.Join(labels, ",") + "}"
			}
			switch {
			case m.GetCounter() != nil:
				fmt.Fprintf(w, "%s%s %g\n", mf.GetName(), lbl, m.GetCounter().GetValue())
			case m.GetHistogram() != nil:
				fmt.Fprintf(w, "%s_count%s %d\n", mf.GetName(), lbl, m.GetHistogram().GetSampleCount())
			}
		}
	}
	return nil
}
