package metricstore

import (
	"fmt"

	"github.com/trackline/trackline/schema"
)

// PrintStoreStatus prints run store status information.
func PrintStoreStatus(status schema.StoreStatus) {
	fmt.Printf("Store Backend: %s\n", status.Backend)
	if status.Backend == schema.NoneBackend {
		fmt.Println("Persistence is disabled.")
		return
	}
	fmt.Printf("Saved Runs: %d\n", status.Runs)
	fmt.Printf("Migration Version: %d\n", status.Version)
	if status.Dirty {
		fmt.Println("Migration State: dirty (fix manually or force version)")
	} else {
		fmt.Println("Migration State: clean")
	}
}
