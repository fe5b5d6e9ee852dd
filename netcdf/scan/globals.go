package scan

import (
	"github.com/batchatco/go-netcdf-catalog/netcdf/api"
	"github.com/batchatco/go-netcdf-catalog/netcdf/catalog"
)

// datatype maps the stored type of v to its in-memory type.
func (s *scanner) datatype(v *variable) catalog.Datatype {
	return datatypeOf(v.xtype, v.isUnsigned, v.compound)
}

func datatypeOf(t api.Type, unsigned bool, compound []api.Type) catalog.Datatype {
	if t == api.TypeByte && unsigned {
		t = api.TypeUByte
	}
	switch t {
	case api.TypeByte:
		return catalog.Int8
	case api.TypeChar, api.TypeUByte:
		return catalog.UInt8
	case api.TypeShort:
		return catalog.Int16
	case api.TypeInt:
		return catalog.Int32
	case api.TypeFloat:
		return catalog.Flt32
	case api.TypeDouble, api.TypeInt64, api.TypeUInt64:
		return catalog.Flt64
	case api.TypeUShort:
		return catalog.UInt16
	case api.TypeUInt:
		return catalog.UInt32
	case api.TypeCompound:
		// complex numbers are stored as a pair of equal real fields
		if len(compound) == 2 && compound[0] == compound[1] {
			switch compound[0] {
			case api.TypeFloat:
				return catalog.Cpx32
			case api.TypeDouble:
				return catalog.Cpx64
			}
		}
	}
	return catalog.DatatypeUndefined
}

// scanGlobalAttrs copies the dataset attributes into the catalog. A few
// are consumed instead: they name the institution and model, mark
// UCLA-LES output or describe an external grid.
func (s *scanner) scanGlobalAttrs() {
	attrs := s.cat.Attrs
	for _, a := range s.store.Attributes() {
		switch {
		case a.Type.IsText():
			text := attrText(a, 0)
			if text == "" {
				attrs.Add(a.Name, a)
				continue
			}
			switch {
			case a.Name == "institution":
				s.institution = text
				attrs.Add(a.Name, a)
			case a.Name == "source":
				s.model = text
				attrs.Add(a.Name, a)
			case a.Name == "Source" && hasPrefix(text, "UCLA-LES"):
				s.uclaLES = true
				attrs.Add(a.Name, a)
			case a.Name == "_NCProperties", a.Name == "CDI", a.Name == "CDO":
			case a.Name == "grid_file_uri":
				s.gridInfo.gridFile = text
			case a.Name == "uuidOfHGrid" && len(text) == 36:
				s.gridInfo.uuid = text
			case a.Name == "uuidOfVGrid" && len(text) == 36:
				s.uuidOfVGrid = text
			default:
				if a.Name == "ICON_grid_file_uri" && s.gridInfo.gridFile == "" {
					s.gridInfo.gridFile = text
				}
				attrs.Add(a.Name, a)
			}
		case a.Type == api.TypeShort || a.Type == api.TypeInt:
			if a.Name == "number_of_grid_used" {
				s.gridInfo.numberOfGridUsed = int(attrSet{a}.Int64(a.Name))
				s.gridInfo.hasGridUsed = true
				continue
			}
			attrs.Add(a.Name, a)
		case a.Type.IsFloat():
			attrs.Add(a.Name, a)
		}
	}
	s.cat.Institution = s.institution
	s.cat.Model = s.model
}
