package pay

import (
	"context"
	"encoding/hex"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// testReceiverIDPubKey is secp256k1's generator point in compressed form,
// a valid (if otherwise meaningless) 33-byte pubkey for fixtures that need
// to clear NewVertex's parse.
var testReceiverIDPubKey, _ = hex.DecodeString(
	"0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798")

type fakeDecoder struct {
	inv *DecodedInvoice
	err error
}

func (d fakeDecoder) Decode(string) (*DecodedInvoice, error) {
	return d.inv, d.err
}

func TestPayRejectsEmptyBolt11(t *testing.T) {
	_, failure := Pay(context.Background(), &Command{}, Deps{
		Decoder: fakeDecoder{},
	})
	require.NotNil(t, failure)
	require.Equal(t, ErrInvalidCommand, failure.Code)
}

func TestPayRejectsContradictoryMsatoshi(t *testing.T) {
	amt := uint64(5000)
	decoder := fakeDecoder{inv: &DecodedInvoice{
		Msatoshi: 5000,
		Expiry:   time.Now().Add(time.Hour),
	}}

	_, failure := Pay(context.Background(), &Command{
		Bolt11:   "lntb...",
		Msatoshi: &amt,
	}, Deps{Decoder: decoder})

	require.NotNil(t, failure)
	require.Equal(t, ErrInvalidCommand, failure.Code)
}

func TestPayRejectsOutOfRangeMaxFeePercent(t *testing.T) {
	decoder := fakeDecoder{inv: &DecodedInvoice{
		Msatoshi: 5000,
		Expiry:   time.Now().Add(time.Hour),
	}}

	_, failure := Pay(context.Background(), &Command{
		Bolt11:        "lntb...",
		MaxFeePercent: 150,
	}, Deps{Decoder: decoder})

	require.NotNil(t, failure)
	require.Equal(t, ErrInvalidCommand, failure.Code)
}

func TestPayHappyPath(t *testing.T) {
	decoder := fakeDecoder{inv: &DecodedInvoice{
		Msatoshi:         10000,
		Expiry:           time.Now().Add(time.Hour),
		ReceiverIDPubKey: testReceiverIDPubKey,
	}}
	finder := &scriptedFinder{routes: []*Route{oneHopRoute(10040)}}
	sender := &scriptedSender{results: []*SendpayResult{successResult(0x44)}}

	success, failure := Pay(context.Background(), &Command{
		Bolt11: "lntb...",
	}, Deps{
		Decoder: decoder,
		Finder:  finder,
		Sender:  sender,
	})

	require.Nil(t, failure)
	require.NotNil(t, success)
	require.Equal(t, 1, success.GetrouteTries)
	require.Equal(t, 1, success.SendpayTries)
}

func TestPayCancellation(t *testing.T) {
	decoder := fakeDecoder{inv: &DecodedInvoice{
		Msatoshi:         10000,
		Expiry:           time.Now().Add(time.Hour),
		ReceiverIDPubKey: testReceiverIDPubKey,
	}}
	finder := &blockingFinder{unblock: make(chan struct{})}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	success, failure := Pay(ctx, &Command{Bolt11: "lntb..."}, Deps{
		Decoder: decoder,
		Finder:  finder,
	})

	require.Nil(t, success)
	require.Nil(t, failure)
}

// blockingFinder never returns, modeling a getroute request outstanding
// when the command is cancelled.
type blockingFinder struct {
	unblock chan struct{}
}

func (b *blockingFinder) FindRoute(ctx context.Context,
	req *RouteRequest) (*RouteReply, error) {

	select {
	case <-b.unblock:
	case <-ctx.Done():
	}
	return nil, ctx.Err()
}
