// Command ringdemo builds a consistent hashing ring and prints how a set
// of keys routes across it before and after topology changes.
package main

import (
	"flag"
	"fmt"
	"log"

	"ringhash/internal/config"
	"ringhash/ring"
)

func main() {
	membersFlag := flag.String("members", "cacheA,cacheB,cacheC", "comma-separated initial members")
	keysFlag := flag.String("keys", "user_mcnulty,user_bunk,user_omar,user_bunny,user_stringer", "comma-separated keys to route")
	addFlag := flag.String("add", "cacheD,cacheE", "comma-separated members to add after the initial pass")
	removeFlag := flag.String("remove", "cacheC", "comma-separated members to remove after the growth pass")
	replicas := flag.Int("replicas", 20, "virtual nodes per member")
	flag.Parse()

	cfg, err := config.Load(*membersFlag, *keysFlag, *replicas)
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	added, err := config.ParseList(*addFlag)
	if err != nil {
		log.Fatalf("invalid -add list: %v", err)
	}
	removed, err := config.ParseList(*removeFlag)
	if err != nil {
		log.Fatalf("invalid -remove list: %v", err)
	}

	r := ring.New(ring.WithReplicas(cfg.Replicas))
	for _, m := range cfg.Members {
		r.Add(m)
	}

	printAssignments(r, cfg.Keys, fmt.Sprintf("initial state %v", cfg.Members))

	for _, m := range added {
		r.Add(m)
	}
	printAssignments(r, cfg.Keys, fmt.Sprintf("with %v added", added))

	for _, m := range removed {
		r.Remove(m)
	}
	printAssignments(r, cfg.Keys, fmt.Sprintf("with %v removed", removed))
}

func printAssignments(r *ring.Ring, keys []string, title string) {
	fmt.Println(title)
	for _, key := range keys {
		member, err := r.Get(key)
		if err != nil {
			log.Fatalf("lookup %s: %v", key, err)
		}
		fmt.Printf("%s => %s\n", key, member)
	}
}
