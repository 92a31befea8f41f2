package actors

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/sasha-s/go-deadlock"
	"nostrid/engine/library"
)

var currentWallet library.Wallet
var currentWalletMutex = &deadlock.Mutex{}

// MyWallet returns the current Wallet or creates a new one if there isn't one already
func MyWallet() library.Wallet {
	currentWalletMutex.Lock()
	defer currentWalletMutex.Unlock()
	if len(currentWallet.PrivateKey) == 0 {
		//try to restore wallet from disk
		if w, ok := getWalletFromDisk(); ok {
			currentWallet = w
		} else {
			library.LogCLI("Generating a new wallet, back up the private key if you want to keep it", 4)
			currentWallet = makeNewWallet()
			fmt.Printf("\n\n~NEW WALLET~\nPublic Key: %s\nPrivate Key: %s\n\n", currentWallet.Account, currentWallet.PrivateKey)
		}
	}
	if err := persistCurrentWallet(); err != nil {
		library.LogCLI(err.Error(), 0)
	}
	return currentWallet
}

// SetWallet replaces the current wallet with an imported one and persists it.
func SetWallet(w library.Wallet) error {
	if len(w.PrivateKey) != 64 {
		return fmt.Errorf("refusing to set a wallet without a valid private key")
	}
	currentWalletMutex.Lock()
	defer currentWalletMutex.Unlock()
	currentWallet = w
	return persistCurrentWallet()
}

func makeNewWallet() library.Wallet {
	sk, err := btcec.NewPrivateKey()
	if err != nil {
		library.LogCLI(err.Error(), 0)
	}
	skHex := hex.EncodeToString(sk.Serialize())
	return library.Wallet{
		PrivateKey: skHex,
		Account:    getPubKey(skHex),
	}
}

func getPubKey(privateKey string) string {
	if keyb, err := hex.DecodeString(privateKey); err != nil {
		library.LogCLI(fmt.Sprintf("Error decoding key from hex: %s\n", err.Error()), 0)
	} else {
		_, pubkey := btcec.PrivKeyFromBytes(keyb)
		return hex.EncodeToString(pubkey.SerializeCompressed()[1:])
	}
	return ""
}

func persistCurrentWallet() error {
	bytes, err := json.Marshal(currentWallet)
	if err != nil {
		return err
	}
	Write("engine", "wallet", bytes)
	return nil
}

func getWalletFromDisk() (w library.Wallet, ok bool) {
	file, exists := Open("engine", "wallet")
	if !exists {
		return library.Wallet{}, false
	}
	defer file.Close()
	bytes, err := io.ReadAll(file)
	if err != nil {
		library.LogCLI(fmt.Sprintf("Error getting wallet file: %s", err.Error()), 2)
		return library.Wallet{}, false
	}
	err = json.Unmarshal(bytes, &w)
	if err != nil {
		library.LogCLI(fmt.Sprintf("Error parsing wallet file: %s", err.Error()), 3)
		return library.Wallet{}, false
	}
	return w, true
}
