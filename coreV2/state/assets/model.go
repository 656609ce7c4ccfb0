package assets

import (
	"math/big"

	"github.com/MinterTeam/minter-swap/coreV2/types"
	"github.com/holiman/uint256"
)

// Model is the metadata and supply of a single fungible asset.
type Model struct {
	Address        types.Address
	Symbol         string
	Decimals       uint8
	Minter         types.Address
	Wrapped        bool
	TransferFeeBps uint64
	Supply         *uint256.Int
}

func (m *Model) copy() *Model {
	c := *m
	c.Supply = new(uint256.Int).Set(m.Supply)
	return &c
}

// record is the persisted form of Model.
type record struct {
	Symbol         string
	Decimals       uint8
	Minter         types.Address
	Wrapped        bool
	TransferFeeBps uint64
	Supply         *big.Int
}

func (m *Model) record() *record {
	return &record{
		Symbol:         m.Symbol,
		Decimals:       m.Decimals,
		Minter:         m.Minter,
		Wrapped:        m.Wrapped,
		TransferFeeBps: m.TransferFeeBps,
		Supply:         m.Supply.ToBig(),
	}
}

func (r *record) model(address types.Address) *Model {
	return &Model{
		Address:        address,
		Symbol:         r.Symbol,
		Decimals:       r.Decimals,
		Minter:         r.Minter,
		Wrapped:        r.Wrapped,
		TransferFeeBps: r.TransferFeeBps,
		Supply:         uint256.MustFromBig(r.Supply),
	}
}

type holding struct {
	asset types.Address
	owner types.Address
}

func (h holding) key() []byte {
	k := make([]byte, 0, 2*types.AddressLength)
	k = append(k, h.asset[:]...)
	return append(k, h.owner[:]...)
}

type grant struct {
	asset   types.Address
	owner   types.Address
	spender types.Address
}

func (g grant) key() []byte {
	k := make([]byte, 0, 3*types.AddressLength)
	k = append(k, g.asset[:]...)
	k = append(k, g.owner[:]...)
	return append(k, g.spender[:]...)
}
