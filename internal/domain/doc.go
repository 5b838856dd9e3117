// Package domain models gridded sea-ice concentration products and the
// transforms that turn them into point records and display fields.
//
// # Data Source
//
// Inputs are EUMETSAT OSI SAF sea-ice concentration files (for example the
// ICDR v3.0 product ice_conc_nh_ease2-250_icdr-v3p0_202201011200.nc). Each
// file carries a curvilinear EASE2 grid: two 2-D coordinate variables ("lat"
// and "lon") and a 3-D scalar field ("ice_conc") shaped [time, yc, xc]. Only
// the first time slice is used unless configured otherwise.
//
// # Conventions
//
// Concentration is a percentage. A cell is physically valid when its value
// lies in the inclusive range [0, 100]:
//
//	  0    open water
//	  100  full ice cover
//	  NaN  fill value, decoded from _FillValue or missing_value
//	  >100 or <0  flags and sentinels such as -9999 or land masks
//
// Grids are stored row-major: index k = i*Cols + j for row i and column j.
// [Flatten] walks cells in that order and never sorts or deduplicates.
//
// Points are always emitted as (lon, lat), the GeoJSON axis order, while the
// grid stores latitude first. Values are rounded to two decimals on export.
//
// # Dates
//
// The product date is encoded in the file name as a _YYYYMMDDhhmm stamp. See
// [DataDate].
package domain
