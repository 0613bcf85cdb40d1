package opframe

import "github.com/snakch/timedag/pkg/tderrors"

// faulted is implemented by Data wrappers that can enter a sticky error
// state mid-fold (currently only combine.CovMatrixData, whose shape
// mismatch has no sane partial result to keep combining). Every Run loop
// in this package checks it after each Wrap/Combine step so evaluation
// aborts on the first fault instead of silently returning garbage.
type faulted interface {
	Fault() error
}

func faultOf(data any) error {
	f, ok := data.(faulted)
	if !ok {
		return nil
	}
	if err := f.Fault(); err != nil {
		return tderrors.Wrap(tderrors.ShapeMismatch, "opframe", err)
	}
	return nil
}
