package main

import (
	"context"
	"fmt"
	"log"

	"github.com/kittclouds/gokitt/internal/store"
	"github.com/kittclouds/gokitt/pkg/ngram"
	"github.com/kittclouds/gokitt/pkg/qgram"
)

var keys = []string{
	"Panthera leo",
	"Panthera tigris",
	"Panthera onca",
	"Felis catus",
	"Canis lupus",
	"Canis latrans",
	"Ursus arctos",
	"Ursus maritimus",
}

func main() {
	fmt.Println("Testing build + search...")
	corpus := testSearch()

	fmt.Println("\nTesting MemStore...")
	testStore(store.NewMemStore(), corpus)

	fmt.Println("\nTesting SQLiteStore...")
	s, err := store.NewSQLiteStore()
	if err != nil {
		log.Fatalf("NewSQLiteStore failed: %v", err)
	}
	testStore(s, corpus)

	fmt.Println("\n✅ All tests passed!")
}

func testSearch() *qgram.Corpus {
	it, err := ngram.NewDefaultIterator(3, false)
	if err != nil {
		log.Fatalf("NewDefaultIterator failed: %v", err)
	}

	corpus, err := qgram.BuildParallel(context.Background(), keys, it)
	if err != nil {
		log.Fatalf("BuildParallel failed: %v", err)
	}
	fmt.Printf("  ✓ Built corpus: %d keys, %d ngrams\n",
		corpus.NumberOfKeys(), corpus.NumberOfNgrams())

	results, err := corpus.Search(context.Background(), "pantera Leo", it, 3, 0.2)
	if err != nil {
		log.Fatalf("Search failed: %v", err)
	}
	if len(results) == 0 {
		log.Fatal("Search returned no results")
	}
	for _, r := range results {
		fmt.Printf("  ✓ %-20s %.3f\n", r.Key, r.Score)
	}

	verified, err := corpus.VerifyResults(results, qgram.NewVerifier([]string{"leo"}))
	if err != nil {
		log.Fatalf("VerifyResults failed: %v", err)
	}
	fmt.Printf("  ✓ %d of %d results contain \"leo\" exactly\n", len(verified), len(results))

	hits := corpus.KeyIDsFromAllNgrams(it.Grams("Panthera leo"))
	if len(hits) != 1 {
		log.Fatalf("KeyIDsFromAllNgrams expected 1 hit, got %d", len(hits))
	}
	fmt.Println("  ✓ KeyIDsFromAllNgrams works")

	return corpus
}

func testStore(s store.Storer, corpus *qgram.Corpus) {
	defer s.Close()

	if err := s.SaveCorpus("panthera", 3, corpus.Snapshot()); err != nil {
		log.Fatalf("SaveCorpus failed: %v", err)
	}
	fmt.Println("  ✓ SaveCorpus works")

	snap, err := s.LoadCorpus("panthera")
	if err != nil {
		log.Fatalf("LoadCorpus failed: %v", err)
	}
	reloaded, err := qgram.FromSnapshot(snap)
	if err != nil {
		log.Fatalf("FromSnapshot failed: %v", err)
	}
	if reloaded.NumberOfKeys() != corpus.NumberOfKeys() {
		log.Fatalf("LoadCorpus expected %d keys, got %d",
			corpus.NumberOfKeys(), reloaded.NumberOfKeys())
	}
	fmt.Println("  ✓ LoadCorpus works")

	count, err := s.CountCorpora()
	if err != nil {
		log.Fatalf("CountCorpora failed: %v", err)
	}
	if count != 1 {
		log.Fatalf("CountCorpora expected 1, got %d", count)
	}
	fmt.Println("  ✓ CountCorpora works")
}
