package usecase

import "errors"

// Warnings collects non-fatal failures that clients should still hear about,
// such as a notification that could neither be stored nor buffered.
type Warnings []string

// Add records err, unwrapping joined errors into separate entries.
func (w *Warnings) Add(err error) {
	if err == nil {
		return
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			w.Add(e)
		}
		return
	}
	*w = append(*w, err.Error())
}

// Err folds the warnings back into one error, nil when empty.
func (w Warnings) Err() error {
	if len(w) == 0 {
		return nil
	}
	errs := make([]error, len(w))
	for i, msg := range w {
		errs[i] = errors.New(msg)
	}
	return errors.Join(errs...)
}
