// Package parser tokenizes shell input lines into Statement values the
// shell dispatches against an Engine and RatingStore. It is deliberately a
// small hand-written space-separated-fields scanner, not a parser-combinator
// or grammar library — nothing in the retrieval pack reaches for one either,
// every CLI there (cobra-based or flag-based) does its own argument
// splitting by hand.
package parser

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies which shell statement a parsed line represents.
type Kind int

const (
	KindUserDistance Kind = iota
	KindItemDistance
	KindUserKNN
	KindUserBasedPredict
	KindItemBasedPredict
	KindEnterMatrix
	KindMatrixMoveTo
	KindMatrixGet
	KindInsertRating
	KindUpdateRating
	KindRemoveRating
	KindQuit
)

// Statement is one parsed shell command. Fields not used by Kind are left
// zero-valued.
type Statement struct {
	Kind Kind

	UserA, UserB string
	ItemA, ItemB string
	Method       string // "euclidean" | "manhattan" | "minkowski" | "jaccard" | "cosine" | "pearson" | "adjcosine" | "slopeone"
	MinkowskiP   float64
	K            int
	ChunkOpt     *int
	M, N         int
	Score        float64
}

// Parse tokenizes one input line into a Statement. Unknown verbs or
// malformed arguments return an error; the shell logs it and continues.
func Parse(line string) (Statement, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Statement{}, fmt.Errorf("parser: empty line")
	}

	verb := strings.ToLower(fields[0])
	args := fields[1:]

	switch verb {
	case "q", "quit", "exit":
		return Statement{Kind: KindQuit}, nil

	case "userdistance":
		if len(args) < 3 {
			return Statement{}, fmt.Errorf("parser: UserDistance needs <userA> <userB> <method> [p]")
		}
		st := Statement{Kind: KindUserDistance, UserA: args[0], UserB: args[1], Method: strings.ToLower(args[2])}
		if st.Method == "minkowski" {
			p, err := requireFloat(args, 3, "minkowski order p")
			if err != nil {
				return Statement{}, err
			}
			st.MinkowskiP = p
		}
		return st, nil

	case "itemdistance":
		if len(args) < 3 {
			return Statement{}, fmt.Errorf("parser: ItemDistance needs <itemA> <itemB> <method>")
		}
		return Statement{Kind: KindItemDistance, ItemA: args[0], ItemB: args[1], Method: strings.ToLower(args[2])}, nil

	case "userknn":
		if len(args) < 3 {
			return Statement{}, fmt.Errorf("parser: UserKnn needs <k> <user> <method> [chunk_size]")
		}
		k, err := requireInt(args, 0, "k")
		if err != nil {
			return Statement{}, err
		}
		st := Statement{Kind: KindUserKNN, K: k, UserA: args[1], Method: strings.ToLower(args[2])}
		if len(args) > 3 {
			c, err := strconv.Atoi(args[3])
			if err != nil {
				return Statement{}, fmt.Errorf("parser: bad chunk_size %q: %w", args[3], err)
			}
			st.ChunkOpt = &c
		}
		return st, nil

	case "userbasedpredict":
		if len(args) < 4 {
			return Statement{}, fmt.Errorf("parser: UserBasedPredict needs <k> <user> <item> <method> [chunk_size]")
		}
		k, err := requireInt(args, 0, "k")
		if err != nil {
			return Statement{}, err
		}
		st := Statement{Kind: KindUserBasedPredict, K: k, UserA: args[1], ItemA: args[2], Method: strings.ToLower(args[3])}
		if len(args) > 4 {
			c, err := strconv.Atoi(args[4])
			if err != nil {
				return Statement{}, fmt.Errorf("parser: bad chunk_size %q: %w", args[4], err)
			}
			st.ChunkOpt = &c
		}
		return st, nil

	case "itembasedpredict":
		if len(args) < 3 {
			return Statement{}, fmt.Errorf("parser: ItemBasedPredict needs <user> <item> <method> [chunk_size]")
		}
		st := Statement{Kind: KindItemBasedPredict, UserA: args[0], ItemA: args[1], Method: strings.ToLower(args[2])}
		if len(args) > 3 {
			c, err := requireInt(args, 3, "chunk_size")
			if err != nil {
				return Statement{}, err
			}
			st.K = c
		}
		return st, nil

	case "entermatrix":
		if len(args) < 3 {
			return Statement{}, fmt.Errorf("parser: EnterMatrix needs <m> <n> <method>")
		}
		m, err := requireInt(args, 0, "m")
		if err != nil {
			return Statement{}, err
		}
		n, err := requireInt(args, 1, "n")
		if err != nil {
			return Statement{}, err
		}
		return Statement{Kind: KindEnterMatrix, M: m, N: n, Method: strings.ToLower(args[2])}, nil

	case "matrixmoveto":
		if len(args) < 2 {
			return Statement{}, fmt.Errorf("parser: MatrixMoveTo needs <i> <j>")
		}
		i, err := requireInt(args, 0, "i")
		if err != nil {
			return Statement{}, err
		}
		j, err := requireInt(args, 1, "j")
		if err != nil {
			return Statement{}, err
		}
		return Statement{Kind: KindMatrixMoveTo, M: i, N: j}, nil

	case "matrixget":
		if len(args) < 2 {
			return Statement{}, fmt.Errorf("parser: MatrixGet needs <itemA> <itemB>")
		}
		return Statement{Kind: KindMatrixGet, ItemA: args[0], ItemB: args[1]}, nil

	case "insertrating":
		if len(args) < 3 {
			return Statement{}, fmt.Errorf("parser: InsertRating needs <user> <item> <score>")
		}
		score, err := requireFloat(args, 2, "score")
		if err != nil {
			return Statement{}, err
		}
		return Statement{Kind: KindInsertRating, UserA: args[0], ItemA: args[1], Score: score}, nil

	case "updaterating":
		if len(args) < 3 {
			return Statement{}, fmt.Errorf("parser: UpdateRating needs <user> <item> <score>")
		}
		score, err := requireFloat(args, 2, "score")
		if err != nil {
			return Statement{}, err
		}
		return Statement{Kind: KindUpdateRating, UserA: args[0], ItemA: args[1], Score: score}, nil

	case "removerating":
		if len(args) < 2 {
			return Statement{}, fmt.Errorf("parser: RemoveRating needs <user> <item>")
		}
		return Statement{Kind: KindRemoveRating, UserA: args[0], ItemA: args[1]}, nil

	default:
		return Statement{}, fmt.Errorf("parser: unknown statement %q", fields[0])
	}
}

func requireInt(args []string, idx int, name string) (int, error) {
	v, err := strconv.Atoi(args[idx])
	if err != nil {
		return 0, fmt.Errorf("parser: bad %s %q: %w", name, args[idx], err)
	}
	return v, nil
}

func requireFloat(args []string, idx int, name string) (float64, error) {
	if idx >= len(args) {
		return 0, fmt.Errorf("parser: missing %s", name)
	}
	v, err := strconv.ParseFloat(args[idx], 64)
	if err != nil {
		return 0, fmt.Errorf("parser: bad %s %q: %w", name, args[idx], err)
	}
	return v, nil
}
