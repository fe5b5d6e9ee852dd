// Package netcdf scans NetCDF files into catalogs of their data variables.
package netcdf

import (
	"github.com/batchatco/go-netcdf-catalog/netcdf/catalog"
	"github.com/batchatco/go-netcdf-catalog/netcdf/ncstore"
	"github.com/batchatco/go-netcdf-catalog/netcdf/scan"
)

// Dataset is a scanned file. Deferred coordinate reads go to the file
// until Close is called.
type Dataset struct {
	*catalog.Catalog
	store *ncstore.Store
}

// Open scans a NetCDF file and keeps it open.
func Open(fname string, cfg scan.Config) (*Dataset, error) {
	store, err := ncstore.Open(fname)
	if err != nil {
		return nil, err
	}
	cat, err := scan.Scan(store, cfg)
	if err != nil {
		store.Close()
		return nil, err
	}
	return &Dataset{Catalog: cat, store: store}, nil
}

func (d *Dataset) Close() error {
	return d.store.Close()
}

// Scan scans a NetCDF file by name. All coordinates are read before the
// file is closed.
func Scan(fname string, cfg scan.Config) (*catalog.Catalog, error) {
	cfg.LazyGrids = false
	d, err := Open(fname, cfg)
	if err != nil {
		return nil, err
	}
	defer d.Close()
	return d.Catalog, nil
}
