package events

import (
	"encoding/hex"
	"math/big"
	"strconv"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

func formatAmount(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func formatUint(v uint64) string {
	return strconv.FormatUint(v, 10)
}

func formatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}

// PositionRef derives the stable reference hash indexers key staking position
// events by. The numeric position ID stays authoritative on-chain; the hash
// exists so off-chain consumers can join events without knowing the counter.
func PositionRef(owner [20]byte, id uint64) [32]byte {
	var buf [8]byte
	for i := 0; i < 8; i++ {
		buf[7-i] = byte(id >> (8 * i))
	}
	return ethcrypto.Keccak256Hash(owner[:], buf[:])
}

func formatRef(ref [32]byte) string {
	return "0x" + hex.EncodeToString(ref[:])
}

func formatAddress(addr [20]byte) string {
	return "0x" + hex.EncodeToString(addr[:])
}
