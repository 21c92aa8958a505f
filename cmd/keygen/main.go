// Command keygen prints a freshly generated shared key in the format the
// issuance endpoint accepts. Run it once and put the value in the server
// config and the calling site.
package main

import (
	"fmt"
	"log"

	"github.com/dmitrijs2005/bluelink/internal/apikey"
)

func main() {
	key, err := apikey.Generate()
	if err != nil {
		log.Fatalf("%v", err)
	}
	fmt.Println(key)
}
