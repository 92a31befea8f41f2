package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"nostrid/engine/actors"
	"nostrid/identity/did"
	"nostrid/identity/keys"
	"nostrid/identity/nip05"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}
	switch os.Args[1] {
	case "generate":
		wallet, err := keys.GenerateKeypair()
		if err != nil {
			fmt.Println(err.Error())
			os.Exit(1)
		}
		printWallet(wallet.PrivateKey, wallet.Account)
	case "import":
		if len(os.Args) < 3 {
			usage()
			return
		}
		wallet, err := keys.ImportKeypair(os.Args[2])
		if err != nil {
			fmt.Println(err.Error())
			os.Exit(1)
		}
		printWallet(wallet.PrivateKey, wallet.Account)
	case "decode":
		if len(os.Args) < 3 {
			usage()
			return
		}
		prefix, decoded, err := keys.DecodePointer(os.Args[2])
		if err != nil {
			fmt.Println(err.Error())
			os.Exit(1)
		}
		fmt.Printf("Prefix: %s\n%#v\n", prefix, decoded)
	case "did":
		if len(os.Args) < 3 {
			usage()
			return
		}
		pubkey, err := keys.ParseKey(os.Args[2])
		if err != nil {
			fmt.Println(err.Error())
			os.Exit(1)
		}
		result := did.Resolve(context.Background(), did.Prefix+pubkey, did.ResolveOptions{})
		b, _ := json.MarshalIndent(result, "", " ")
		fmt.Println(string(b))
	case "lud06":
		if len(os.Args) < 3 {
			usage()
			return
		}
		url, err := actors.DecodeLud06(os.Args[2])
		if err != nil {
			fmt.Println(err.Error())
			os.Exit(1)
		}
		fmt.Printf("Pay URL: %s\n", url)
	case "nip05":
		if len(os.Args) < 3 {
			usage()
			return
		}
		var expected string
		if len(os.Args) > 3 {
			expected = os.Args[3]
		}
		verifier := nip05.New(nip05.NewCache(time.Minute))
		identifier := verifier.Verify(context.Background(), os.Args[2], expected)
		if identifier == nil {
			fmt.Println("unverified")
			os.Exit(1)
		}
		b, _ := json.MarshalIndent(identifier, "", " ")
		fmt.Println(string(b))
	default:
		usage()
	}
}

func printWallet(privateKey, account string) {
	nsec, _ := keys.EncodePrivkey(privateKey)
	npub, _ := keys.EncodePubkey(account)
	d, _ := did.FromPubkey(account)
	fmt.Printf("Private Key: %s\nnsec: %s\nPublic Key: %s\nnpub: %s\nDID: %s\n", privateKey, nsec, account, npub, d)
}

func usage() {
	fmt.Println("USAGE:\nkeytool generate\nkeytool import <hex privkey|nsec>\nkeytool decode <npub|nsec|note|nprofile|nevent|nrelay|naddr>\nkeytool did <hex pubkey|npub>\nkeytool lud06 <lnurl>\nkeytool nip05 <name@domain> [expected pubkey]")
}
