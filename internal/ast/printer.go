package ast

import (
	"fmt"
	"strings"
)

// Print returns a tree-like string representation of the AST for debugging
func Print(node Node) string {
	var sb strings.Builder
	printNode(&sb, node, 0)
	return sb.String()
}

func printNode(sb *strings.Builder, node Node, indent int) {
	if node == nil {
		return
	}

	prefix := strings.Repeat("  ", indent)

	switch n := node.(type) {
	case *Program:
		sb.WriteString(prefix + "Program\n")
		for _, stmt := range n.Statements {
			printNode(sb, stmt, indent+1)
		}

	case *Block:
		if len(n.Statements) == 0 {
			sb.WriteString(prefix + "Block: empty\n")
			return
		}
		sb.WriteString(prefix + "Block\n")
		for _, stmt := range n.Statements {
			printNode(sb, stmt, indent+1)
		}

	case *AssignStmt:
		sb.WriteString(prefix + "AssignStmt\n")
		for _, target := range n.Targets {
			sb.WriteString(fmt.Sprintf("%s  Target:\n", prefix))
			printNode(sb, target, indent+2)
		}
		sb.WriteString(fmt.Sprintf("%s  Value:\n", prefix))
		printNode(sb, n.Value, indent+2)

	case *AugAssignStmt:
		sb.WriteString(fmt.Sprintf("%sAugAssignStmt: %s=\n", prefix, n.Op))
		sb.WriteString(fmt.Sprintf("%s  Target:\n", prefix))
		printNode(sb, n.Target, indent+2)
		sb.WriteString(fmt.Sprintf("%s  Value:\n", prefix))
		printNode(sb, n.Value, indent+2)

	case *IfStmt:
		sb.WriteString(prefix + "IfStmt\n")
		sb.WriteString(fmt.Sprintf("%s  Condition:\n", prefix))
		printNode(sb, n.Condition, indent+2)
		sb.WriteString(fmt.Sprintf("%s  Then:\n", prefix))
		printNode(sb, n.Then, indent+2)
		if n.Else != nil {
			sb.WriteString(fmt.Sprintf("%s  Else:\n", prefix))
			printNode(sb, n.Else, indent+2)
		}

	case *ForStmt:
		sb.WriteString(prefix + "ForStmt\n")
		sb.WriteString(fmt.Sprintf("%s  Target:\n", prefix))
		printNode(sb, n.Target, indent+2)
		sb.WriteString(fmt.Sprintf("%s  Iterable:\n", prefix))
		printNode(sb, n.Iterable, indent+2)
		sb.WriteString(fmt.Sprintf("%s  Body:\n", prefix))
		printNode(sb, n.Body, indent+2)

	case *WhileStmt:
		sb.WriteString(prefix + "WhileStmt\n")
		sb.WriteString(fmt.Sprintf("%s  Condition:\n", prefix))
		printNode(sb, n.Condition, indent+2)
		sb.WriteString(fmt.Sprintf("%s  Body:\n", prefix))
		printNode(sb, n.Body, indent+2)

	case *BreakStmt:
		sb.WriteString(prefix + "BreakStmt\n")

	case *ContinueStmt:
		sb.WriteString(prefix + "ContinueStmt\n")

	case *ExprStmt:
		sb.WriteString(prefix + "ExprStmt\n")
		printNode(sb, n.Expr, indent+1)

	case *Identifier:
		sb.WriteString(fmt.Sprintf("%sIdentifier: %s\n", prefix, n.Name))

	case *IntLit:
		sb.WriteString(fmt.Sprintf("%sIntLit: %s\n", prefix, n.Value))

	case *FloatLit:
		sb.WriteString(fmt.Sprintf("%sFloatLit: %s\n", prefix, n.Value))

	case *StringLit:
		sb.WriteString(fmt.Sprintf("%sStringLit: %q\n", prefix, n.Value))

	case *BoolLit:
		sb.WriteString(fmt.Sprintf("%sBoolLit: %t\n", prefix, n.Value))

	case *UnaryExpr:
		sb.WriteString(fmt.Sprintf("%sUnaryExpr: %s\n", prefix, n.Op))
		printNode(sb, n.Operand, indent+1)

	case *BoolOpExpr:
		sb.WriteString(fmt.Sprintf("%sBoolOpExpr: %s\n", prefix, n.Op))
		for _, v := range n.Values {
			printNode(sb, v, indent+1)
		}

	case *CompareExpr:
		ops := make([]string, len(n.Ops))
		for i, op := range n.Ops {
			ops[i] = op.String()
		}
		sb.WriteString(fmt.Sprintf("%sCompareExpr: %s\n", prefix, strings.Join(ops, " ")))
		printNode(sb, n.Left, indent+1)
		for _, c := range n.Comparators {
			printNode(sb, c, indent+1)
		}

	case *BinaryExpr:
		sb.WriteString(fmt.Sprintf("%sBinaryExpr: %s\n", prefix, n.Op))
		printNode(sb, n.Left, indent+1)
		printNode(sb, n.Right, indent+1)

	case *CallExpr:
		sb.WriteString(fmt.Sprintf("%sCallExpr: %s\n", prefix, n.Function))
		if len(n.Args) > 0 {
			sb.WriteString(fmt.Sprintf("%s  Args:\n", prefix))
			for _, arg := range n.Args {
				printNode(sb, arg, indent+2)
			}
		} else {
			sb.WriteString(fmt.Sprintf("%s  Args: none\n", prefix))
		}

	case *TupleExpr:
		sb.WriteString(prefix + "TupleExpr\n")
		for _, el := range n.Elements {
			printNode(sb, el, indent+1)
		}

	case *ListExpr:
		sb.WriteString(prefix + "ListExpr\n")
		for _, el := range n.Elements {
			printNode(sb, el, indent+1)
		}

	case *SubscriptExpr:
		sb.WriteString(prefix + "SubscriptExpr\n")
		sb.WriteString(fmt.Sprintf("%s  Object:\n", prefix))
		printNode(sb, n.Object, indent+2)
		sb.WriteString(fmt.Sprintf("%s  Index:\n", prefix))
		printNode(sb, n.Index, indent+2)

	default:
		sb.WriteString(fmt.Sprintf("%sUnknown node type: %T\n", prefix, node))
	}
}

// Describe returns a short name for a node, used in error messages.
func Describe(node Node) string {
	switch n := node.(type) {
	case *Identifier:
		return "name '" + n.Name + "'"
	case *CallExpr:
		return "call to '" + n.Function + "'"
	case *BinaryExpr:
		return "operator '" + n.Op.String() + "'"
	case *UnaryExpr:
		return "unary operator '" + n.Op.String() + "'"
	case *TupleExpr:
		return "tuple"
	case *ListExpr:
		return "list"
	case *SubscriptExpr:
		return "subscript"
	case *FloatLit:
		return "float literal " + n.Value
	case *ContinueStmt:
		return "continue statement"
	default:
		name := fmt.Sprintf("%T", node)
		return strings.TrimPrefix(name, "*ast.")
	}
}

// IsStrCall reports whether e is an explicit str(...) conversion.
func IsStrCall(e Expression) bool {
	call, ok := e.(*CallExpr)
	return ok && call.Function == "str"
}
