package main

import (
	"os"

	"github.com/tendermint/tendermint/libs/log"

	"github.com/Chiplis/Photon-solana-contracts/cmd/photond/cmd"
)

func main() {
	rootCmd := cmd.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		log.NewTMLogger(log.NewSyncWriter(os.Stderr)).Error("failure when running photond", "err", err)
		os.Exit(1)
	}
}
