// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package bytecode

import (
	"fmt"

	"github.com/zinc-lang/zinc/pkg/semantic"
)

// Instruction is the tagged union of every opcode. Each variant carries its
// own immediate operands and no behaviour beyond construction/inspection,
// matching the tagged-union Instruction shape of pkg/zkc/vm/instruction:
// dispatch is always by exhaustive type switch, never by embedding
// behaviour in the variant itself.
type Instruction interface {
	// Opcode returns this instruction's discriminant.
	Opcode() Opcode
	// IsDebug reports whether this instruction is debug-only (Dbg, the
	// *Marker family, NoOperation) and therefore discardable without
	// changing observable semantics in prove/verify/setup modes (§3, §6.2).
	IsDebug() bool
	// String renders a one-line disassembly, used by dump/debug tooling.
	String() string
	isInstruction()
}

// base is embedded by every concrete instruction to supply IsDebug's
// default (false) without repeating it on every variant.
type base struct{}

func (base) IsDebug() bool { return false }

// debugBase is embedded by the debug-only variants.
type debugBase struct{}

func (debugBase) IsDebug() bool { return true }

// ---- Memory family --------------------------------------------------

// Push places an immediate value of the given type onto the evaluation
// stack.
type Push struct {
	base
	Value []byte // little-endian, field-sized cell count per Type.Size()
	Type  semantic.Type
}

func (*Push) isInstruction() {}
func (*Push) Opcode() Opcode { return OpPush }
func (p *Push) String() string {
	return fmt.Sprintf("push %s %x", p.Type, p.Value)
}

// Pop discards the top evaluation-stack cell.
type Pop struct{ base }

func (*Pop) isInstruction()   {}
func (*Pop) Opcode() Opcode   { return OpPop }
func (*Pop) String() string   { return "pop" }

// Copy duplicates the nth-from-top evaluation-stack cell.
type Copy struct {
	base
	Offset int
}

func (*Copy) isInstruction() {}
func (*Copy) Opcode() Opcode { return OpCopy }
func (c *Copy) String() string { return fmt.Sprintf("copy %d", c.Offset) }

// Load reads `size` contiguous cells from the data stack at absolute
// address `Addr` and pushes them onto the evaluation stack.
type Load struct {
	base
	Addr int
	Size int
}

func (*Load) isInstruction() {}
func (*Load) Opcode() Opcode { return OpLoad }
func (l *Load) String() string { return fmt.Sprintf("load %d %d", l.Addr, l.Size) }

// LoadByIndex reads an `elem`-sized slice at a runtime-computed index atop
// the evaluation stack, from a `total`-sized aggregate based at Addr.
type LoadByIndex struct {
	base
	Addr  int
	Elem  int
	Total int
}

func (*LoadByIndex) isInstruction() {}
func (*LoadByIndex) Opcode() Opcode { return OpLoadByIndex }
func (l *LoadByIndex) String() string {
	return fmt.Sprintf("load_by_index %d %d %d", l.Addr, l.Elem, l.Total)
}

// Store pops `size` cells off the evaluation stack and writes them to the
// data stack at absolute address Addr, guarded by the condition stack.
type Store struct {
	base
	Addr int
	Size int
}

func (*Store) isInstruction() {}
func (*Store) Opcode() Opcode { return OpStore }
func (s *Store) String() string { return fmt.Sprintf("store %d %d", s.Addr, s.Size) }

// StoreByIndex is the runtime-indexed counterpart of Store.
type StoreByIndex struct {
	base
	Addr  int
	Elem  int
	Total int
}

func (*StoreByIndex) isInstruction() {}
func (*StoreByIndex) Opcode() Opcode { return OpStoreByIndex }
func (s *StoreByIndex) String() string {
	return fmt.Sprintf("store_by_index %d %d %d", s.Addr, s.Elem, s.Total)
}

// Slice narrows an aggregate of `total` cells atop the evaluation stack down
// to a contiguous `slice`-sized sub-range (e.g. array-of-tuple projections).
type Slice struct {
	base
	Total int
	Size  int
	Offset int
}

func (*Slice) isInstruction() {}
func (*Slice) Opcode() Opcode { return OpSlice }
func (s *Slice) String() string { return fmt.Sprintf("slice %d %d %d", s.Total, s.Offset, s.Size) }

// ---- Arithmetic family ------------------------------------------------

// Add pops two cells and pushes their sum, of the given scalar type.
type Add struct {
	base
	Type semantic.Type
}

func (*Add) isInstruction() {}
func (*Add) Opcode() Opcode { return OpAdd }
func (a *Add) String() string { return "add " + a.Type.String() }

// Sub pops two cells and pushes their difference.
type Sub struct {
	base
	Type semantic.Type
}

func (*Sub) isInstruction() {}
func (*Sub) Opcode() Opcode { return OpSub }
func (s *Sub) String() string { return "sub " + s.Type.String() }

// Mul pops two cells and pushes their product.
type Mul struct {
	base
	Type semantic.Type
}

func (*Mul) isInstruction() {}
func (*Mul) Opcode() Opcode { return OpMul }
func (m *Mul) String() string { return "mul " + m.Type.String() }

// Div pops two cells and pushes their (integer or field) quotient.
type Div struct {
	base
	Type semantic.Type
}

func (*Div) isInstruction() {}
func (*Div) Opcode() Opcode { return OpDiv }
func (d *Div) String() string { return "div " + d.Type.String() }

// Rem pops two cells and pushes their remainder; undefined for `field`.
type Rem struct {
	base
	Type semantic.Type
}

func (*Rem) isInstruction() {}
func (*Rem) Opcode() Opcode { return OpRem }
func (r *Rem) String() string { return "rem " + r.Type.String() }

// Neg negates the top cell; traps on the minimum signed integer.
type Neg struct {
	base
	Type semantic.Type
}

func (*Neg) isInstruction() {}
func (*Neg) Opcode() Opcode { return OpNeg }
func (n *Neg) String() string { return "neg " + n.Type.String() }

// ---- Comparison family -------------------------------------------------

// Eq pops two cells and pushes a boolean: whether they are equal.
type Eq struct {
	base
	Type semantic.Type
}

func (*Eq) isInstruction() {}
func (*Eq) Opcode() Opcode { return OpEq }
func (e *Eq) String() string { return "eq " + e.Type.String() }

// Ne is the negation of Eq.
type Ne struct {
	base
	Type semantic.Type
}

func (*Ne) isInstruction() {}
func (*Ne) Opcode() Opcode { return OpNe }
func (n *Ne) String() string { return "ne " + n.Type.String() }

// Lt pushes whether the second-from-top operand is strictly less than top.
type Lt struct {
	base
	Type semantic.Type
}

func (*Lt) isInstruction() {}
func (*Lt) Opcode() Opcode { return OpLt }
func (l *Lt) String() string { return "lt " + l.Type.String() }

// Le is the non-strict counterpart of Lt.
type Le struct {
	base
	Type semantic.Type
}

func (*Le) isInstruction() {}
func (*Le) Opcode() Opcode { return OpLe }
func (l *Le) String() string { return "le " + l.Type.String() }

// Gt is the strict inverse of Le.
type Gt struct {
	base
	Type semantic.Type
}

func (*Gt) isInstruction() {}
func (*Gt) Opcode() Opcode { return OpGt }
func (g *Gt) String() string { return "gt " + g.Type.String() }

// Ge is the non-strict inverse of Lt.
type Ge struct {
	base
	Type semantic.Type
}

func (*Ge) isInstruction() {}
func (*Ge) Opcode() Opcode { return OpGe }
func (g *Ge) String() string { return "ge " + g.Type.String() }

// ---- Logical family -----------------------------------------------------

// And pops two boolean cells and pushes their conjunction.
type And struct{ base }

func (*And) isInstruction() {}
func (*And) Opcode() Opcode { return OpAnd }
func (*And) String() string { return "and" }

// Or pops two boolean cells and pushes their disjunction.
type Or struct{ base }

func (*Or) isInstruction() {}
func (*Or) Opcode() Opcode { return OpOr }
func (*Or) String() string { return "or" }

// Xor pops two boolean cells and pushes their exclusive-or.
type Xor struct{ base }

func (*Xor) isInstruction() {}
func (*Xor) Opcode() Opcode { return OpXor }
func (*Xor) String() string { return "xor" }

// Not negates the top boolean cell.
type Not struct{ base }

func (*Not) isInstruction() {}
func (*Not) Opcode() Opcode { return OpNot }
func (*Not) String() string { return "not" }

// ---- Bitwise family ------------------------------------------------------

// BitwiseAnd pops two integer cells and pushes their bitwise AND.
type BitwiseAnd struct {
	base
	Type semantic.Type
}

func (*BitwiseAnd) isInstruction() {}
func (*BitwiseAnd) Opcode() Opcode { return OpBitwiseAnd }
func (b *BitwiseAnd) String() string { return "bit_and " + b.Type.String() }

// BitwiseOr pops two integer cells and pushes their bitwise OR.
type BitwiseOr struct {
	base
	Type semantic.Type
}

func (*BitwiseOr) isInstruction() {}
func (*BitwiseOr) Opcode() Opcode { return OpBitwiseOr }
func (b *BitwiseOr) String() string { return "bit_or " + b.Type.String() }

// BitwiseXor pops two integer cells and pushes their bitwise XOR.
type BitwiseXor struct {
	base
	Type semantic.Type
}

func (*BitwiseXor) isInstruction() {}
func (*BitwiseXor) Opcode() Opcode { return OpBitwiseXor }
func (b *BitwiseXor) String() string { return "bit_xor " + b.Type.String() }

// BitwiseNot complements every bit of the top integer cell within its
// declared bit-length.
type BitwiseNot struct {
	base
	Type semantic.Type
}

func (*BitwiseNot) isInstruction() {}
func (*BitwiseNot) Opcode() Opcode { return OpBitwiseNot }
func (b *BitwiseNot) String() string { return "bit_not " + b.Type.String() }

// BitwiseShiftLeft shifts the top integer cell left by a constant amount.
type BitwiseShiftLeft struct {
	base
	Type   semantic.Type
	Amount int
}

func (*BitwiseShiftLeft) isInstruction() {}
func (*BitwiseShiftLeft) Opcode() Opcode { return OpBitwiseShiftLeft }
func (b *BitwiseShiftLeft) String() string {
	return fmt.Sprintf("bit_shift_left %s %d", b.Type, b.Amount)
}

// BitwiseShiftRight shifts the top integer cell right by a constant amount.
type BitwiseShiftRight struct {
	base
	Type   semantic.Type
	Amount int
}

func (*BitwiseShiftRight) isInstruction() {}
func (*BitwiseShiftRight) Opcode() Opcode { return OpBitwiseShiftRight }
func (b *BitwiseShiftRight) String() string {
	return fmt.Sprintf("bit_shift_right %s %d", b.Type, b.Amount)
}

// ---- Cast family ----------------------------------------------------------

// Cast re-binds the top cell's value to Target, per the casting relation of
// §4.3(d): narrowing range-checks, widening zero/sign-extends.
type Cast struct {
	base
	From, Target semantic.Type
}

func (*Cast) isInstruction() {}
func (*Cast) Opcode() Opcode { return OpCast }
func (c *Cast) String() string { return fmt.Sprintf("cast %s -> %s", c.From, c.Target) }

// ---- Control family ---------------------------------------------------

// If pops a boolean condition and pushes `cond ∧ top` onto the condition
// stack (§4.6).
type If struct{ base }

func (*If) isInstruction() {}
func (*If) Opcode() Opcode { return OpIf }
func (*If) String() string { return "if" }

// Else replaces the condition-stack top with `¬cond ∧ parent_top`.
type Else struct{ base }

func (*Else) isInstruction() {}
func (*Else) Opcode() Opcode { return OpElse }
func (*Else) String() string { return "else" }

// EndIf pops the condition stack; its depth must match the depth just
// before the preceding If.
type EndIf struct{ base }

func (*EndIf) isInstruction() {}
func (*EndIf) Opcode() Opcode { return OpEndIf }
func (*EndIf) String() string { return "endif" }

// LoopBegin marks the start of a statically-unrolled loop body of N
// iterations; the VM is a static unroller (§4.6) rather than a jumping
// interpreter for loops.
type LoopBegin struct {
	base
	Iterations int
	// BodyLen is the number of instructions (excluding LoopBegin/LoopEnd
	// themselves) making up one iteration of the loop body.
	BodyLen int
	// IndexAddr is the data-stack address the emitter reserved for the
	// loop induction variable, reachable via Load inside the body.
	IndexAddr int
}

func (*LoopBegin) isInstruction() {}
func (*LoopBegin) Opcode() Opcode { return OpLoopBegin }
func (l *LoopBegin) String() string {
	return fmt.Sprintf("loop_begin %d %d %d", l.Iterations, l.BodyLen, l.IndexAddr)
}

// LoopEnd closes the body opened by the matching LoopBegin.
type LoopEnd struct{ base }

func (*LoopEnd) isInstruction() {}
func (*LoopEnd) Opcode() Opcode { return OpLoopEnd }
func (*LoopEnd) String() string { return "loop_end" }

// Call copies `Args` cells from the evaluation stack into a fresh
// data-stack frame, pushes a return frame, and jumps to Addr.
type Call struct {
	base
	Addr int
	Args int
	// Name is carried for diagnostics/disassembly only.
	Name string
}

func (*Call) isInstruction() {}
func (*Call) Opcode() Opcode { return OpCall }
func (c *Call) String() string { return fmt.Sprintf("call %s@%d %d", c.Name, c.Addr, c.Args) }

// Return writes `Outs` cells back to the caller's evaluation stack and pops
// the current frame.
type Return struct {
	base
	Outs int
}

func (*Return) isInstruction() {}
func (*Return) Opcode() Opcode { return OpReturn }
func (r *Return) String() string { return fmt.Sprintf("return %d", r.Outs) }

// Exit terminates the whole program, writing `Outs` cells as the program's
// public outputs.
type Exit struct {
	base
	Outs int
}

func (*Exit) isInstruction() {}
func (*Exit) Opcode() Opcode { return OpExit }
func (e *Exit) String() string { return fmt.Sprintf("exit %d", e.Outs) }

// ---- Contract storage family (out-of-scope collaborator interface) -----

// StorageInit initialises the in-memory default storage backend for a
// contract's field layout.
type StorageInit struct {
	base
	FieldCount int
}

func (*StorageInit) isInstruction() {}
func (*StorageInit) Opcode() Opcode { return OpStorageInit }
func (s *StorageInit) String() string { return fmt.Sprintf("storage_init %d", s.FieldCount) }

// StorageFetch loads the entire contract storage record for the active
// instance into the data stack ahead of a call.
type StorageFetch struct{ base }

func (*StorageFetch) isInstruction() {}
func (*StorageFetch) Opcode() Opcode { return OpStorageFetch }
func (*StorageFetch) String() string { return "storage_fetch" }

// StorageLoad reads `Size` cells from contract storage at the index atop
// the evaluation stack.
type StorageLoad struct {
	base
	Size int
}

func (*StorageLoad) isInstruction() {}
func (*StorageLoad) Opcode() Opcode { return OpStorageLoad }
func (s *StorageLoad) String() string { return fmt.Sprintf("storage_load %d", s.Size) }

// StorageStore writes `Size` cells to contract storage at the index atop
// the evaluation stack, guarded by the condition stack.
type StorageStore struct {
	base
	Size int
}

func (*StorageStore) isInstruction() {}
func (*StorageStore) Opcode() Opcode { return OpStorageStore }
func (s *StorageStore) String() string { return fmt.Sprintf("storage_store %d", s.Size) }

// ---- State modifier family ----------------------------------------------

// SetUnconstrained switches off constraint emission for the enclosed
// region; every cell allocated inside must be re-constrained before
// UnsetUnconstrained (§9 open questions).
type SetUnconstrained struct{ base }

func (*SetUnconstrained) isInstruction() {}
func (*SetUnconstrained) Opcode() Opcode { return OpSetUnconstrained }
func (*SetUnconstrained) String() string { return "set_unconstrained" }

// UnsetUnconstrained re-enables constraint emission.
type UnsetUnconstrained struct{ base }

func (*UnsetUnconstrained) isInstruction() {}
func (*UnsetUnconstrained) Opcode() Opcode { return OpUnsetUnconstrained }
func (*UnsetUnconstrained) String() string { return "unset_unconstrained" }

// ---- Diagnostics family --------------------------------------------------

// Dbg formats and prints its arguments in run mode; discarded in
// prove/verify/setup modes.
type Dbg struct {
	debugBase
	Format string
	Types  []semantic.Type
}

func (*Dbg) isInstruction() {}
func (*Dbg) Opcode() Opcode { return OpDbg }
func (d *Dbg) String() string { return fmt.Sprintf("dbg %q", d.Format) }

// Assert pops a boolean cell and fails (run mode) or becomes unsatisfiable
// (prove mode) if it is false; Message is optional diagnostic text.
type Assert struct {
	base
	Message string
}

func (*Assert) isInstruction() {}
func (*Assert) Opcode() Opcode { return OpAssert }
func (a *Assert) String() string { return "assert " + a.Message }

// FileMarker records which source file subsequent instructions originate
// from, for diagnostics only.
type FileMarker struct {
	debugBase
	File string
}

func (*FileMarker) isInstruction() {}
func (*FileMarker) Opcode() Opcode { return OpFileMarker }
func (f *FileMarker) String() string { return "file " + f.File }

// FunctionMarker records the enclosing function's name, for diagnostics only.
type FunctionMarker struct {
	debugBase
	Name string
}

func (*FunctionMarker) isInstruction() {}
func (*FunctionMarker) Opcode() Opcode { return OpFunctionMarker }
func (f *FunctionMarker) String() string { return "function " + f.Name }

// LineMarker records the current source line, for diagnostics only.
type LineMarker struct {
	debugBase
	Line int
}

func (*LineMarker) isInstruction() {}
func (*LineMarker) Opcode() Opcode { return OpLineMarker }
func (l *LineMarker) String() string { return fmt.Sprintf("line %d", l.Line) }

// ColumnMarker records the current source column, for diagnostics only.
type ColumnMarker struct {
	debugBase
	Column int
}

func (*ColumnMarker) isInstruction() {}
func (*ColumnMarker) Opcode() Opcode { return OpColumnMarker }
func (c *ColumnMarker) String() string { return fmt.Sprintf("column %d", c.Column) }

// NoOperation performs no action; a placeholder the emitter may leave
// behind (e.g. where stripped debug instructions left a gap).
type NoOperation struct{ debugBase }

func (*NoOperation) isInstruction() {}
func (*NoOperation) Opcode() Opcode { return OpNoOperation }
func (*NoOperation) String() string { return "noop" }
