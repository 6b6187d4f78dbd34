package main

import (
	"fmt"

	"github.com/whiteleaf/reco/internal/engine"
	"github.com/whiteleaf/reco/internal/parser"
)

func userMethod(st parser.Statement) (engine.UserMethod, error) {
	switch st.Method {
	case "euclidean":
		return engine.NewUserMethod(engine.Euclidean), nil
	case "manhattan":
		return engine.NewUserMethod(engine.Manhattan), nil
	case "minkowski":
		return engine.MinkowskiMethod(st.MinkowskiP), nil
	case "jaccard":
		return engine.NewUserMethod(engine.Jaccard), nil
	case "cosine":
		return engine.NewUserMethod(engine.Cosine), nil
	case "pearson":
		return engine.NewUserMethod(engine.Pearson), nil
	default:
		return engine.UserMethod{}, fmt.Errorf("reco: unknown user method %q", st.Method)
	}
}

func itemMethod(name string) (engine.ItemMethod, error) {
	switch name {
	case "adjcosine":
		return engine.AdjCosine, nil
	case "slopeone":
		return engine.SlopeOne, nil
	default:
		return 0, fmt.Errorf("reco: unknown item method %q", name)
	}
}
