package store

import "github.com/signalsfoundry/delta-e6b/model"

// seedWaypoints is the built-in city set: coordinates are the primary airport
// for each city, field intensities are approximate total-field values in
// nanotesla.
var seedWaypoints = []model.Waypoint{
	{Name: "LONDON", Lat: 51.4775, Lon: -0.4614, FieldNT: 49000},
	{Name: "NEW_YORK", Lat: 40.6413, Lon: -73.7781, FieldNT: 52000},
	{Name: "PARIS", Lat: 49.0097, Lon: 2.5479, FieldNT: 48500},
	{Name: "TORONTO", Lat: 43.6777, Lon: -79.6248, FieldNT: 54000},
	{Name: "REYKJAVIK", Lat: 64.1300, Lon: -21.9406, FieldNT: 52500},
	{Name: "MONTREAL", Lat: 45.4706, Lon: -73.7408, FieldNT: 53500},
	{Name: "MOSCOW", Lat: 55.9726, Lon: 37.4146, FieldNT: 52800},
	{Name: "VANCOUVER", Lat: 49.1947, Lon: -123.1792, FieldNT: 54500},
	{Name: "TOKYO", Lat: 35.7653, Lon: 140.3854, FieldNT: 46500},
	{Name: "BEIJING", Lat: 40.0799, Lon: 116.6031, FieldNT: 54300},
	{Name: "CALGARY", Lat: 51.1215, Lon: -114.0076, FieldNT: 55900},
	{Name: "SYDNEY", Lat: -33.9399, Lon: 151.1753, FieldNT: 57000},
	{Name: "DUBAI", Lat: 25.2532, Lon: 55.3657, FieldNT: 43800},
	{Name: "SINGAPORE", Lat: 1.3644, Lon: 103.9915, FieldNT: 41300},
	{Name: "SAO_PAULO", Lat: -23.4356, Lon: -46.4731, FieldNT: 23100},
	{Name: "JOHANNESBURG", Lat: -26.1392, Lon: 28.2460, FieldNT: 28300},
}

// Seed inserts the built-in waypoint set, leaving existing rows untouched.
// It returns the number of rows inserted.
func (s *Store) Seed() (int, error) {
	inserted := 0
	for _, wp := range seedWaypoints {
		res, err := s.conn.Exec(`
			INSERT OR IGNORE INTO waypoints (name, lat, lon, field_nt) VALUES (?, ?, ?, ?)`,
			wp.Name, wp.Lat, wp.Lon, wp.FieldNT,
		)
		if err != nil {
			return inserted, err
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}
	return inserted, nil
}
