// Package table holds the in-memory tabular model shared by every cleaning
// component: named, typed columns of nullable cells.
//
// Uploads are parsed by Load. CSV and TSV go through encoding/csv, Excel
// workbooks through excelize. Column kinds are inferred from the raw text
// the same way for every format, so a workbook and its CSV export load to
// the same table.
package table
