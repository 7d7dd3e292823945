package vrc

import (
	"bytes"
	"encoding/json"
	"iter"
)

// SchemaSize is the number of attributes of a VehicleRecord.
const SchemaSize = 53

// SchemaEntry binds a field position to an attribute name.
type SchemaEntry struct {
	Position int    `json:"position"`
	Name     string `json:"name"`
}

// Positions 0-6 and 60-65 are reserved.
var schema = [SchemaSize]SchemaEntry{
	{7, "registrationNumber"},
	{8, "brand"},
	{9, "type"},
	{10, "variant"},
	{11, "version"},
	{12, "model"},
	{13, "vin"},
	{14, "certificateReleaseDate"},
	{15, "validity"},
	{16, "holderFullName"},
	{17, "holderFirstName"},
	{18, "holderLastName"},
	{19, "holderName"},
	{20, "holderPesel"},
	{21, "holderZipCode"},
	{22, "holderCity"},
	{23, "holderCommune"},
	{24, "holderStreetName"},
	{25, "holderHouseNumber"},
	{26, "holderApartmentNumber"},
	{27, "ownerFullName"},
	{28, "ownerFirstName"},
	{29, "ownerLastName"},
	{30, "ownerName"},
	{31, "ownerPesel"},
	{32, "ownerZipCode"},
	{33, "ownerCity"},
	{34, "ownerCommune"},
	{35, "ownerStreetName"},
	{36, "ownerHouseNumber"},
	{37, "ownerApartmentNumber"},
	{38, "vehicleMaxTotalWeight"},
	{39, "vehicleAllowedTotalWeight"},
	{40, "vehicleCombinationAllowedTotalWeight"},
	{41, "vehicleWeight"},
	{42, "vehicleCategory"},
	{43, "approvalCertificateNumber"},
	{44, "axlesNumber"},
	{45, "trailerMaxWeightWithBrakes"},
	{46, "trailerMaxWeightWithoutBrakes"},
	{47, "powerToWeightRatio"},
	{48, "engineCapacity"},
	{49, "enginePower"},
	{50, "fuelType"},
	{51, "firstRegistrationDate"},
	{52, "numberOfSeats"},
	{53, "numberOfStandingPlaces"},
	{54, "vehicleType"},
	{55, "purpose"},
	{56, "productionYear"},
	{57, "allowedPackageWeight"},
	{58, "maxAllowedAxlePressure"},
	{59, "vehicleCardNumber"},
}

var schemaIndex = func() map[string]int {
	idx := make(map[string]int, SchemaSize)
	for i, e := range schema {
		idx[e.Name] = i
	}
	return idx
}()

// Schema returns a copy of the schema in position order.
func Schema() []SchemaEntry {
	out := make([]SchemaEntry, SchemaSize)
	copy(out, schema[:])
	return out
}

// PositionOf returns the field position of an attribute.
func PositionOf(name string) (int, bool) {
	i, ok := schemaIndex[name]
	if !ok {
		return 0, false
	}
	return schema[i].Position, true
}

// VehicleRecord maps every schema attribute to its value. It is a value type;
// the zero value is a record whose attributes are all empty.
type VehicleRecord struct {
	values [SchemaSize]string
}

// MapRecord reads every schema position from fields. Positions past the end
// of fields map to "".
func MapRecord(fields FieldList) VehicleRecord {
	var r VehicleRecord
	for i, e := range schema {
		if e.Position < len(fields) {
			r.values[i] = fields[e.Position]
		}
	}
	return r
}

// Get returns the value of name, or "" for names outside the schema.
func (r VehicleRecord) Get(name string) string {
	v, _ := r.Lookup(name)
	return v
}

func (r VehicleRecord) Lookup(name string) (string, bool) {
	i, ok := schemaIndex[name]
	if !ok {
		return "", false
	}
	return r.values[i], true
}

func (r VehicleRecord) Len() int { return SchemaSize }

// All yields attribute names and values in schema order.
func (r VehicleRecord) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for i, e := range schema {
			if !yield(e.Name, r.values[i]) {
				return
			}
		}
	}
}

// Map returns the record as a fresh map.
func (r VehicleRecord) Map() map[string]string {
	m := make(map[string]string, SchemaSize)
	for name, v := range r.All() {
		m[name] = v
	}
	return m
}

// MarshalJSON writes the attributes as an object in schema order.
func (r VehicleRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range schema {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, _ := json.Marshal(e.Name)
		v, err := json.Marshal(r.values[i])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON accepts an object of schema attributes; unknown names are
// ignored and missing ones stay empty.
func (r *VehicleRecord) UnmarshalJSON(data []byte) error {
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*r = VehicleRecord{}
	for name, v := range m {
		if i, ok := schemaIndex[name]; ok {
			r.values[i] = v
		}
	}
	return nil
}
