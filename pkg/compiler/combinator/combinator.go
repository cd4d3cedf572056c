package combinator

// Satisfy matches a single element accepted by pred.
func Satisfy[I Input[I, E], E any](pred func(E) bool) Parser[I, E] {
	return func(in I) (I, E, error) {
		var zero E
		for e := range in.Elements() {
			if !pred(e) {
				return in, zero, &Error[I]{Input: in, Kind: KindSatisfy}
			}
			_, rest := in.TakeSplit(1)
			return rest, e, nil
		}
		return in, zero, &Error[I]{Input: in, Kind: KindEOF}
	}
}

// Take consumes exactly count elements and returns them as an input of
// their own. Too short an input fails with *Needed.
func Take[I Splitter[I]](count int) Parser[I, I] {
	return func(in I) (I, I, error) {
		n, err := in.SliceIndex(count)
		if err != nil {
			return in, in, err
		}
		prefix, rest := in.TakeSplit(n)
		return rest, prefix, nil
	}
}

// TakeUntil consumes elements up to, but excluding, the first one accepted
// by pred. It fails if no element matches.
func TakeUntil[I Input[I, E], E any](pred func(E) bool) Parser[I, I] {
	return func(in I) (I, I, error) {
		i, ok := in.Position(pred)
		if !ok {
			return in, in, &Error[I]{Input: in, Kind: KindTakeUntil}
		}
		prefix, rest := in.TakeSplit(i)
		return rest, prefix, nil
	}
}

// Eof succeeds only on an empty input.
func Eof[I Sized]() Parser[I, struct{}] {
	return func(in I) (I, struct{}, error) {
		if in.Len() != 0 {
			return in, struct{}{}, &Error[I]{Input: in, Kind: KindEOF}
		}
		return in, struct{}{}, nil
	}
}

// Alt tries each parser in order on the same input and returns the first
// success. A *Failure stops the search; otherwise the last error is returned.
func Alt[I any, O any](parsers ...Parser[I, O]) Parser[I, O] {
	return func(in I) (I, O, error) {
		var zero O
		var last error = &Error[I]{Input: in, Kind: KindAlt}
		for _, p := range parsers {
			rest, out, err := p(in)
			if err == nil {
				return rest, out, nil
			}
			if IsFailure(err) {
				return in, zero, err
			}
			last = err
		}
		return in, zero, last
	}
}

// Opt makes p optional. The output is nil when p did not match.
func Opt[I any, O any](p Parser[I, O]) Parser[I, *O] {
	return func(in I) (I, *O, error) {
		rest, out, err := p(in)
		if err != nil {
			if IsFailure(err) {
				return in, nil, err
			}
			return in, nil, nil
		}
		return rest, &out, nil
	}
}

// Many0 applies p until it fails and collects the outputs. A parser that
// succeeds without consuming anything would loop forever and is rejected.
func Many0[I Sized, O any](p Parser[I, O]) Parser[I, []O] {
	return func(in I) (I, []O, error) {
		var out []O
		for {
			rest, o, err := p(in)
			if err != nil {
				if IsFailure(err) {
					return in, nil, err
				}
				return in, out, nil
			}
			if rest.Len() == in.Len() {
				return in, nil, &Failure{Err: &Error[I]{Input: in, Kind: KindMany}}
			}
			out = append(out, o)
			in = rest
		}
	}
}

// Many1 is Many0 but requires at least one match.
func Many1[I Sized, O any](p Parser[I, O]) Parser[I, []O] {
	return func(in I) (I, []O, error) {
		rest, first, err := p(in)
		if err != nil {
			return in, nil, err
		}
		rest, more, err := Many0(p)(rest)
		if err != nil {
			return in, nil, err
		}
		return rest, append([]O{first}, more...), nil
	}
}

// SeparatedList1 parses one or more p separated by sep. A separator that
// is not followed by p is left unconsumed.
func SeparatedList1[I any, O any, S any](sep Parser[I, S], p Parser[I, O]) Parser[I, []O] {
	return func(in I) (I, []O, error) {
		rest, first, err := p(in)
		if err != nil {
			return in, nil, err
		}
		out := []O{first}
		for {
			afterSep, _, err := sep(rest)
			if err != nil {
				if IsFailure(err) {
					return in, nil, err
				}
				return rest, out, nil
			}
			next, o, err := p(afterSep)
			if err != nil {
				if IsFailure(err) {
					return in, nil, err
				}
				return rest, out, nil
			}
			out = append(out, o)
			rest = next
		}
	}
}

// Map transforms the output of p.
func Map[I any, A any, B any](p Parser[I, A], f func(A) B) Parser[I, B] {
	return func(in I) (I, B, error) {
		rest, a, err := p(in)
		if err != nil {
			var zero B
			return in, zero, err
		}
		return rest, f(a), nil
	}
}

// Preceded runs first then second, keeping only the output of second.
func Preceded[I any, A any, B any](first Parser[I, A], second Parser[I, B]) Parser[I, B] {
	return func(in I) (I, B, error) {
		var zero B
		rest, _, err := first(in)
		if err != nil {
			return in, zero, err
		}
		rest, out, err := second(rest)
		if err != nil {
			return in, zero, err
		}
		return rest, out, nil
	}
}

// Cut turns recoverable errors of p into a *Failure.
func Cut[I any, O any](p Parser[I, O]) Parser[I, O] {
	return func(in I) (I, O, error) {
		rest, out, err := p(in)
		if err != nil && !IsFailure(err) {
			return rest, out, &Failure{Err: err}
		}
		return rest, out, err
	}
}

// Recognize runs p and returns the consumed part of the input instead of
// p's output.
func Recognize[I Taker[I], O any](p Parser[I, O]) Parser[I, I] {
	return func(in I) (I, I, error) {
		rest, _, err := p(in)
		if err != nil {
			return in, in, err
		}
		return rest, in.Take(in.Len() - rest.Len()), nil
	}
}
