package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/btcsuite/btclog"
	"github.com/lightninglabs/payflow/build"
	"github.com/lightninglabs/payflow/pay"
)

// payd is a thin process wrapper around the pay package: it parses a
// single pay Command from stdin, wires up the package's collaborator
// interfaces, and writes the terminal reply to stdout as JSON.
//
// Grounded on the teacher's top-level main()/config.go/lnd.go startup
// sequence (parse flags, init logging, run), trimmed to this core's
// scope: payd does not itself implement the gossip subsystem, the
// send subsystem, or BOLT11 decoding (spec.md §1's collaborators); an
// embedding node wires real implementations of pay.RouteFinder,
// pay.PaymentSender and pay.InvoiceDecoder in place of the stubs below.
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "payd:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := build.NewSubLogger("PAYD", nil)
	level, ok := btclog.LevelFromString(cfg.DebugLevel)
	if !ok {
		level = btclog.LevelInfo
	}
	logger.SetLevel(level)
	pay.UseLogger(logger)

	var cmd pay.Command
	if err := json.NewDecoder(os.Stdin).Decode(&cmd); err != nil {
		return fmt.Errorf("reading pay command from stdin: %w", err)
	}
	if cmd.RiskFactor == 0 {
		cmd.RiskFactor = cfg.RiskFactor
	}
	if cmd.MaxFeePercent == 0 {
		cmd.MaxFeePercent = cfg.MaxFeePercent
	}

	deps := pay.Deps{
		Decoder: unimplementedDecoder{},
		Finder:  unimplementedRouteFinder{},
		Sender:  unimplementedPaymentSender{},
	}

	success, failure := pay.Pay(context.Background(), &cmd, deps)

	enc := json.NewEncoder(os.Stdout)
	if failure != nil {
		return enc.Encode(failure)
	}
	return enc.Encode(success)
}

// errNotWired is returned by the stub collaborators below; payd is the
// reference wiring point for the pay package, not a full node, so these
// stand in until an embedding application supplies the real gossip,
// send, and BOLT11-decode subsystems.
var errNotWired = errors.New("collaborator not wired into this payd build")

type unimplementedDecoder struct{}

func (unimplementedDecoder) Decode(string) (*pay.DecodedInvoice, error) {
	return nil, errNotWired
}

type unimplementedRouteFinder struct{}

func (unimplementedRouteFinder) FindRoute(context.Context,
	*pay.RouteRequest) (*pay.RouteReply, error) {

	return nil, errNotWired
}

type unimplementedPaymentSender struct{}

func (unimplementedPaymentSender) Send(context.Context,
	*pay.SendRequest) (*pay.SendpayResult, error) {

	return nil, errNotWired
}
