package swap

import "github.com/MinterTeam/minter-swap/coreV2/types"

type Route struct {
	Pairs  []*PairTrade
	Path   []types.Address
	Input  types.Address
	Output types.Address
}

func NewRoute(pairs []*PairTrade, input types.Address, output *types.Address) Route {
	path := []types.Address{input}
	for i, pair := range pairs {
		path = append(path, pair.other(path[i]))
	}

	if output == nil {
		output = &path[len(path)-1]
	}

	return Route{
		Pairs:  pairs,
		Path:   path,
		Input:  input,
		Output: *output,
	}
}
