package scratchdir

import "errors"

// With runs fn inside a freshly set up ScratchDir and guarantees teardown
// on every exit path, including a panic inside fn. An error returned by fn
// takes precedence; a teardown failure on that path is chained behind it
// via errors.Join so both remain visible to errors.Is and errors.As.
func With(fn func(*ScratchDir) error, opts ...Option) (err error) {
	sd := New(opts...)

	if err = sd.Setup(); err != nil {
		return err
	}

	defer func() {
		if terr := sd.Teardown(); terr != nil {
			err = errors.Join(err, terr)
		}
	}()

	return fn(sd)
}
