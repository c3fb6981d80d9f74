package bytecode

// CompiledFunction is the bytecode form of one ast.FuncDef.
type CompiledFunction struct {
	Name   string
	Params []string
	Body   []Instruction

	// Inline is a hint set by the compiler's function cache: true when Body
	// is at or under InlineThreshold instructions. The VM ignores it today;
	// it is carried for a future inlining pass over Call sites.
	Inline bool
}

// Program is a fully compiled SYL unit: every user-defined function plus
// the top-level statement sequence, which the VM runs as an implicit main.
type Program struct {
	Functions map[string]*CompiledFunction
	TopLevel  []Instruction
}

// NewProgram returns an empty Program ready for the compiler to populate.
func NewProgram() *Program {
	return &Program{Functions: make(map[string]*CompiledFunction)}
}
