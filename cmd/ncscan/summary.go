package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/batchatco/go-netcdf-catalog/netcdf/catalog"
)

// writeCatalog prints a catalog in the layout of a CDO sinfo listing.
func writeCatalog(w io.Writer, fname string, cat *catalog.Catalog) error {
	fmt.Fprintf(w, "File format : NetCDF %s\n", cat.Format)
	fmt.Fprintf(w, "File name   : %s\n", fname)
	if cat.Institution != "" {
		fmt.Fprintf(w, "Institution : %s\n", cat.Institution)
	}
	if cat.Model != "" {
		fmt.Fprintf(w, "Model       : %s\n", cat.Model)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 1, ' ', 0)
	fmt.Fprintln(tw, "  #\tName\tTime\tGrid\tLevels\tCode\tType\tUnits")
	for _, v := range cat.Variables {
		tt := "constant"
		if v.TimeVarying {
			tt = "varying"
		}
		nlev := 1
		if z := cat.ZAxis(v.ZAxis); z != nil {
			nlev = z.Size
		}
		fmt.Fprintf(tw, "%3d\t%s\t%s\t%d\t%d\t%d\t%s\t%s\n",
			v.ID+1, v.Name, tt, v.Grid+1, nlev, v.Code, v.Datatype, v.Units)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w, "Grid coordinates :")
	for _, g := range cat.Grids {
		fmt.Fprintf(w, "%3d : %-12s : points=%d", g.ID+1, g.Type, g.Size)
		if g.XSize > 0 && g.YSize > 0 {
			fmt.Fprintf(w, " (%dx%d)", g.XSize, g.YSize)
		}
		fmt.Fprintln(w)
		writeAxis(w, "x", g.X)
		writeAxis(w, "y", g.Y)
		if g.MappingName != "" {
			fmt.Fprintf(w, "      mapping : %s (%s)\n", g.MappingName, g.MappingVarName)
		}
	}

	fmt.Fprintln(w, "Vertical coordinates :")
	for _, z := range cat.ZAxes {
		fmt.Fprintf(w, "%3d : %-12s : levels=%d", z.ID+1, z.Type, z.Size)
		if z.Name != "" {
			fmt.Fprintf(w, " %s", z.Name)
		}
		fmt.Fprintln(w)
		if len(z.VCT) > 0 {
			fmt.Fprintf(w, "      vct : %d coefficients\n", len(z.VCT))
		}
	}

	ta := cat.TimeAxis
	if len(cat.Timesteps) > 0 {
		fmt.Fprintf(w, "Time coordinate : %d steps, %s %s", len(cat.Timesteps), ta.Type, ta.Unit)
		if ta.Type != catalog.TimeAbsolute {
			fmt.Fprintf(w, " since %s", ta.Reference)
		}
		fmt.Fprintf(w, ", calendar %s\n", ta.Calendar)
		for _, ts := range cat.Timesteps {
			fmt.Fprintf(w, "  %s", ts.Time)
			if ta.Type == catalog.TimeForecast {
				fmt.Fprintf(w, " +%g", ts.ForecastPeriod)
			}
			fmt.Fprintln(w)
		}
	}

	for _, d := range cat.Diagnostics {
		fmt.Fprintf(w, "# %s\n", d)
	}
	_, err := fmt.Fprintln(w)
	return err
}

func writeAxis(w io.Writer, name string, ax catalog.Axis) {
	if !ax.Values.IsSet() && len(ax.Labels) == 0 {
		return
	}
	fmt.Fprintf(w, "      %s : %s", name, ax.Name)
	switch {
	case len(ax.Labels) > 0:
		fmt.Fprintf(w, " %d labels", len(ax.Labels))
	default:
		vals, err := ax.Values.Values()
		if err != nil {
			fmt.Fprintf(w, " (%v)", err)
		} else if len(vals) > 0 {
			fmt.Fprintf(w, " %g to %g", vals[0], vals[len(vals)-1])
		}
	}
	if ax.Units != "" {
		fmt.Fprintf(w, " [%s]", ax.Units)
	}
	fmt.Fprintln(w)
}
