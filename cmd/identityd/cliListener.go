package main

import (
	"encoding/json"
	"fmt"

	"github.com/eiannone/keyboard"
	"nostrid/engine/actors"
	"nostrid/identity/did"
	"nostrid/identity/keys"
	"nostrid/identity/nip05"
)

// cliListener is a cheap and nasty way to speed up development cycles. It listens for keypresses and executes commands.
func cliListener(interrupt chan struct{}, verifier *nip05.Verifier) {
	fmt.Println("VIEW CURRENT STATE:\nw: current wallet\nd: our DID document\nn: nip05 cache stats\nc: engine config\nq: to quit\nSee cliListener.go for more")
	for {
		r, k, err := keyboard.GetSingleKey()
		if err != nil {
			panic(err)
		}
		str := string(r)
		switch str {
		default:
			if k == 13 {
				fmt.Println("\n-----------------------------------")
				break
			}
			if r == 0 {
				break
			}
			fmt.Println("Key " + str + " is not bound to any test procedures. See main.cliListener for more details.")
		case "q":
			close(interrupt)
			return
		case "w":
			wallet := actors.MyWallet()
			fmt.Printf("Current Wallet: \n%s\n", wallet.Account)
			if npub, err := keys.EncodePubkey(wallet.Account); err == nil {
				fmt.Printf("npub: %s\n", npub)
			}
			if d, err := did.FromPubkey(wallet.Account); err == nil {
				fmt.Printf("DID: %s\n", d)
			}
		case "d":
			doc, err := did.GenerateDocument(actors.MyWallet().Account, did.GenerateOptions{
				Relays: actors.MakeOrGetConfig().GetStringSlice("relays"),
			})
			if err != nil {
				fmt.Println(err.Error())
				break
			}
			b, err := json.MarshalIndent(doc, "", " ")
			if err != nil {
				fmt.Println(err.Error())
				break
			}
			fmt.Println(string(b))
		case "n":
			stats := verifier.Cache().Stats()
			fmt.Printf("\nEntries: %d\nHits: %d\nMisses: %d\nEvictions: %d\n", stats.Entries, stats.Hits, stats.Misses, stats.Evictions)
		case "c":
			fmt.Println("CURRENT CONFIG")
			for k, v := range actors.MakeOrGetConfig().AllSettings() {
				fmt.Printf("\nKey: %s; Value: %v\n", k, v)
			}
		}
	}
}
