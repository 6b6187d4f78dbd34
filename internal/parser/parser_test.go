package parser_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/whiteleaf/reco/internal/parser"
)

func TestParse_UserKNN(t *testing.T) {
	t.Parallel()
	st, err := parser.Parse("UserKnn 5 u1 cosine 100")
	require.NoError(t, err)
	require.Equal(t, parser.KindUserKNN, st.Kind)
	require.Equal(t, 5, st.K)
	require.Equal(t, "u1", st.UserA)
	require.Equal(t, "cosine", st.Method)
	require.NotNil(t, st.ChunkOpt)
	require.Equal(t, 100, *st.ChunkOpt)
}

func TestParse_UserKNNWithoutChunkOpt(t *testing.T) {
	t.Parallel()
	st, err := parser.Parse("UserKnn 5 u1 pearson")
	require.NoError(t, err)
	require.Nil(t, st.ChunkOpt)
}

func TestParse_MinkowskiRequiresOrder(t *testing.T) {
	t.Parallel()
	_, err := parser.Parse("UserDistance u1 u2 minkowski")
	require.Error(t, err)

	st, err := parser.Parse("UserDistance u1 u2 minkowski 3")
	require.NoError(t, err)
	require.InDelta(t, 3, st.MinkowskiP, 1e-9)
}

func TestParse_Quit(t *testing.T) {
	t.Parallel()
	for _, line := range []string{"q", "quit", "exit"} {
		st, err := parser.Parse(line)
		require.NoError(t, err)
		require.Equal(t, parser.KindQuit, st.Kind)
	}
}

func TestParse_UnknownVerb(t *testing.T) {
	t.Parallel()
	_, err := parser.Parse("frobnicate u1 u2")
	require.Error(t, err)
}

func TestParse_EmptyLine(t *testing.T) {
	t.Parallel()
	_, err := parser.Parse("")
	require.Error(t, err)
}

func TestParse_InsertRating(t *testing.T) {
	t.Parallel()
	st, err := parser.Parse("InsertRating u1 i1 4.5")
	require.NoError(t, err)
	require.Equal(t, parser.KindInsertRating, st.Kind)
	require.Equal(t, "u1", st.UserA)
	require.Equal(t, "i1", st.ItemA)
	require.InDelta(t, 4.5, st.Score, 1e-9)
}

func TestParse_EnterMatrixAndMoveTo(t *testing.T) {
	t.Parallel()
	st, err := parser.Parse("EnterMatrix 2 2 adjcosine")
	require.NoError(t, err)
	require.Equal(t, parser.KindEnterMatrix, st.Kind)
	require.Equal(t, 2, st.M)
	require.Equal(t, 2, st.N)

	st, err = parser.Parse("MatrixMoveTo 1 0")
	require.NoError(t, err)
	require.Equal(t, parser.KindMatrixMoveTo, st.Kind)
	require.Equal(t, 1, st.M)
	require.Equal(t, 0, st.N)
}
