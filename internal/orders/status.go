package orders

type Status string

const (
	StatusNew       Status = "NEW"
	StatusFinished  Status = "FINISHED"
	StatusCancelled Status = "CANCELLED"
)

// NEW adalah satu-satunya state non-terminal; FINISHED/CANCELLED final,
// tidak pernah dibalik.
var validNext = map[Status]map[Status]bool{
	StatusNew:       {StatusFinished: true, StatusCancelled: true},
	StatusFinished:  {},
	StatusCancelled: {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

func (s Status) Terminal() bool {
	return s == StatusFinished || s == StatusCancelled
}
