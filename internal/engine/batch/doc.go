// Package batch runs a selection reducer over every eligible ARFF file in a directory.
//
// Files are handled strictly one after another in lexicographic order. Each file is
// isolated: a load, reduction or save failure (or a panic) is logged with the file
// name and the run moves on to the next file. Generated outputs carry a marker
// suffix ("_selection") and are never picked up as inputs, so running twice over the
// same directories is safe.
//
// Every file produces exactly one record in the process log, either
//
//	Task {n} // Input file: {name} - attributes: {count} // Output file: {name} - attributes: {count} - Save {successful|failed}
//
// or an "Error processing file" record. The run always ends with the completion line,
// even when individual files failed.
package batch
