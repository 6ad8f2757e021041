package types

type Span struct {
	Begin int32
	End   int32
}

func (s Span) Contains(offset int32) bool {
	return s.Begin <= offset && offset < s.End
}
