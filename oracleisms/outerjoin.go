package oracleisms

import (
	"strings"

	"github.com/orapgcore/oracore/ast"
	"github.com/orapgcore/oracore/diagnostics"
)

// JoinKind is the ANSI join type a (+) predicate resolves to.
type JoinKind string

const (
	InnerJoin JoinKind = "JOIN"
	LeftJoin  JoinKind = "LEFT JOIN"
)

// ResolvedJoin is one FROM-clause entry after (+) resolution: either a plain
// comma-joined table (Kind == InnerJoin, On == nil) or an ANSI join with its
// accumulated ON predicate.
type ResolvedJoin struct {
	Table ast.TableRef
	Kind  JoinKind
	On    []ast.Expression // conjuncts consumed from WHERE for this table
}

// OuterJoinResult is the output of the two-phase (+) analyzer (spec §4.5.2).
type OuterJoinResult struct {
	Base      ast.TableRef    // Tables[0]: never itself outer-joined
	Joins     []ResolvedJoin  // Tables[1:], in original FROM order
	Remainder ast.Expression  // WHERE predicate left over once (+) conjuncts are consumed
}

// AnalyzeOuterJoins implements §4.5.2: it scans tables to assign aliases,
// then scans the WHERE clause's top-level AND-conjuncts for a.col = b.col(+)
// (or the reverse) predicates, rewriting them into ANSI joins. Predicates
// that mark the same table pair inconsistently (outer on one side in one
// conjunct, outer on the other side in another) fail with AmbiguousOuterJoin.
func AnalyzeOuterJoins(tables []ast.TableRef, where ast.Expression) (*OuterJoinResult, *diagnostics.Diagnostics) {
	if len(tables) == 0 {
		return &OuterJoinResult{Remainder: where}, nil
	}

	aliasOf := func(t ast.TableRef) string {
		if t.Alias != "" {
			return strings.ToLower(t.Alias)
		}
		return strings.ToLower(t.Name)
	}

	result := &OuterJoinResult{Base: tables[0], Joins: make([]ResolvedJoin, 0, len(tables)-1)}
	joinByAlias := make(map[string]*ResolvedJoin, len(tables)-1)
	for _, t := range tables[1:] {
		rj := &ResolvedJoin{Table: t, Kind: InnerJoin}
		result.Joins = append(result.Joins, *rj)
		joinByAlias[aliasOf(t)] = &result.Joins[len(result.Joins)-1]
	}

	outerMarked := make(map[string]bool) // alias -> appeared with (+) in some conjunct
	preservedMarked := make(map[string]bool) // alias -> appeared without (+) in some (+) conjunct

	conjuncts := splitConjuncts(where)
	var remainder []ast.Expression

	for _, c := range conjuncts {
		infix, ok := c.(*ast.InfixExpression)
		if !ok || infix.Operator != "=" {
			remainder = append(remainder, c)
			continue
		}
		leftOuter, leftID := asOuterJoinOperand(infix.Left)
		rightOuter, rightID := asOuterJoinOperand(infix.Right)

		if !leftOuter && !rightOuter {
			remainder = append(remainder, c)
			continue
		}
		if leftOuter && rightOuter {
			return nil, diagnostics.New(diagnostics.AmbiguousOuterJoin, infix.Pos.Line, infix.Pos.Column, "",
				"both sides of %s marked (+)", infix.Operator)
		}

		var outerID, preservedID *ast.Identifier
		if leftOuter {
			outerID, preservedID = leftID, rightID
		} else {
			outerID, preservedID = rightID, leftID
		}
		if outerID == nil || preservedID == nil || len(outerID.Parts) < 2 {
			remainder = append(remainder, c)
			continue
		}
		outerAlias := strings.ToLower(outerID.Parts[len(outerID.Parts)-2])

		if preservedMarked[outerAlias] {
			return nil, diagnostics.New(diagnostics.AmbiguousOuterJoin, infix.Pos.Line, infix.Pos.Column, outerAlias,
				"table %q marked both outer and preserved across (+) predicates", outerAlias)
		}
		outerMarked[outerAlias] = true
		if len(preservedID.Parts) >= 2 {
			preservedAlias := strings.ToLower(preservedID.Parts[len(preservedID.Parts)-2])
			if outerMarked[preservedAlias] {
				return nil, diagnostics.New(diagnostics.AmbiguousOuterJoin, infix.Pos.Line, infix.Pos.Column, preservedAlias,
					"table %q marked both outer and preserved across (+) predicates", preservedAlias)
			}
			preservedMarked[preservedAlias] = true
		}

		rj, ok := joinByAlias[outerAlias]
		if !ok {
			remainder = append(remainder, c)
			continue
		}
		plain := &ast.InfixExpression{Pos: infix.Pos, Left: stripOuterMark(infix.Left), Operator: "=", Right: stripOuterMark(infix.Right)}
		rj.Kind = LeftJoin
		rj.On = append(rj.On, plain)
	}

	result.Remainder = joinConjuncts(remainder)
	return result, nil
}

// splitConjuncts flattens a WHERE tree on top-level AND.
func splitConjuncts(e ast.Expression) []ast.Expression {
	if e == nil {
		return nil
	}
	if infix, ok := e.(*ast.InfixExpression); ok && strings.EqualFold(infix.Operator, "AND") {
		return append(splitConjuncts(infix.Left), splitConjuncts(infix.Right)...)
	}
	return []ast.Expression{e}
}

// joinConjuncts rebuilds a single expression from conjuncts, or nil if empty.
func joinConjuncts(cs []ast.Expression) ast.Expression {
	if len(cs) == 0 {
		return nil
	}
	out := cs[0]
	for _, c := range cs[1:] {
		out = &ast.InfixExpression{Pos: c.Position(), Left: out, Operator: "AND", Right: c}
	}
	return out
}

// asOuterJoinOperand reports whether e is `ident(+)` and returns the
// underlying dotted identifier.
func asOuterJoinOperand(e ast.Expression) (bool, *ast.Identifier) {
	suf, ok := e.(*ast.OuterJoinSuffix)
	if !ok {
		return false, nil
	}
	id, _ := suf.Inner.(*ast.Identifier)
	return true, id
}

func stripOuterMark(e ast.Expression) ast.Expression {
	if suf, ok := e.(*ast.OuterJoinSuffix); ok {
		return suf.Inner
	}
	return e
}
