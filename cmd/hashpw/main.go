// Command hashpw prints a bcrypt hash for ADMIN_PASSWORD_HASH.
//
//	go run ./cmd/hashpw 'my organizer password'
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/iliyamo/event-bed-booking/internal/utils"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: hashpw <password>")
		os.Exit(2)
	}
	// Unset or out-of-range BCRYPT_COST falls back to the bcrypt default.
	cost, _ := strconv.Atoi(os.Getenv("BCRYPT_COST"))
	hash, err := utils.HashPassword(os.Args[1], cost)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(hash)
}
