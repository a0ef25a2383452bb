// Package cleaning implements the cleaning pipeline. Generic steps run
// first in a fixed order (duplicates, column names, missing values,
// whitespace, dates, column order), followed by the industry operations.
// Each requested step yields a StepResult so callers see what was applied,
// skipped or failed.
package cleaning
