// Command selfplay pits the search against the random policy on the
// minibattle reference game, writes one JSON record per game, and can ship
// the gzipped records to HDFS for later analysis.
package main

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/colinmarc/hdfs"
	"k8s.io/klog/v2"

	ismcts "github.com/ismcts"
	"github.com/ismcts/game"
	"github.com/ismcts/game/minibattle"
)

var (
	numGames   = flag.Int("games", 10, "number of games to play")
	iterations = flag.Int("iterations", 200, "MCTS iterations per decision")
	maxDepth   = flag.Int("max_depth", 50, "simulation move cap")
	maxMoves   = flag.Int("max_moves", 200, "match move cap")
	seed       = flag.Uint64("seed", 0, "random seed; 0 means time-seeded")
	recordPath = flag.String("record", "selfplay.jsonl", "match records output path")
	dumpTree   = flag.String("dump_tree", "", "write the final decision's search tree (dot) to this path")
	hdfsAddr   = flag.String("hdfs_addr", "", "HDFS namenode address; empty disables upload")
	hdfsPath   = flag.String("hdfs_path", "/selfplay/records.jsonl.gz", "HDFS destination for the gzipped records")
)

type record struct {
	Game    int        `json:"game"`
	Winner  int        `json:"winner"`
	Moves   int        `json:"moves"`
	Rewards [2]float32 `json:"rewards"`
}

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	adapter := minibattle.NewAdapter(*seed)
	conf := ismcts.DefaultConfig("minibattle")
	conf.MCTSConf.Iterations = *iterations
	conf.MCTSConf.MaxDepth = *maxDepth
	conf.MCTSConf.Seed = *seed
	agent, err := ismcts.NewAgent(adapter, conf)
	if err != nil {
		log.Fatal(err)
	}

	f, err := os.Create(*recordPath)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()
	enc := json.NewEncoder(f)

	match := ismcts.NewMatch(adapter, agent.SearchStrategy(), agent.RandomStrategy(), *maxMoves)
	var wins [2]int
	draws := 0
	for i := 0; i < *numGames; i++ {
		res, err := match.Play(minibattle.NewGame())
		if err != nil {
			log.Fatal(err)
		}
		if res.Winner == game.NoPlayer {
			draws++
		} else {
			wins[res.Winner]++
		}
		rec := record{Game: i, Winner: res.Winner, Moves: res.Moves, Rewards: res.Rewards}
		if err := enc.Encode(rec); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("game %d: winner=%d moves=%d\n", i, res.Winner, res.Moves)
	}
	fmt.Printf("search %d - random %d - draws %d\n", wins[0], wins[1], draws)

	if *dumpTree != "" {
		dot, err := agent.Engine().DOT()
		if err != nil {
			log.Fatal(err)
		}
		if err := os.WriteFile(*dumpTree, []byte(dot), 0644); err != nil {
			log.Fatal(err)
		}
	}

	if *hdfsAddr != "" {
		if err := upload(*recordPath, *hdfsAddr, *hdfsPath); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("uploaded records to %s%s\n", *hdfsAddr, *hdfsPath)
	}
}

// upload gzips the records file and writes it to HDFS.
func upload(local, addr, remote string) error {
	in, err := os.Open(local)
	if err != nil {
		return err
	}
	defer in.Close()

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := io.Copy(zw, in); err != nil {
		return err
	}
	if err := zw.Close(); err != nil {
		return err
	}

	cli, err := hdfs.New(addr)
	if err != nil {
		return err
	}
	f, err := cli.Create(remote)
	if err != nil {
		return err
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
