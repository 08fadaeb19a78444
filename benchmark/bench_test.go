package benchmark

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/Jeffail/gabs/v2"
	"github.com/akshaybharambe14/ijson"
	"github.com/dhawalhost/keypath"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"github.com/valyala/fastjson"
)

var smallJSON = []byte(`{"name":"John","age":30,"city":"New York"}`)
var smallGraph interface{}

var mediumJSON = []byte(`{
  "name": "John Smith",
  "age": 35,
  "address": {
    "street": "123 Main St",
    "city": "San Francisco",
    "state": "CA",
    "zip": "94103"
  },
  "phones": [
    {"type": "home", "number": "555-1234"},
    {"type": "work", "number": "555-5678"}
  ],
  "email": "john@example.com",
  "active": true,
  "scores": [95, 87, 92, 78, 85]
}`)
var mediumGraph interface{}

var largeJSON []byte
var largeGraph interface{}
var simplePaths []string

func init() {
	json.Unmarshal(smallJSON, &smallGraph)
	json.Unmarshal(mediumJSON, &mediumGraph)

	// Generate a graph with 1000 items
	items := make([]interface{}, 1000)
	for i := range items {
		items[i] = map[string]interface{}{
			"id":   i,
			"name": fmt.Sprintf("Item %d", i),
			"tags": []interface{}{fmt.Sprintf("tag%d-1", i), fmt.Sprintf("tag%d-2", i)},
			"metadata": map[string]interface{}{
				"priority": i % 5,
				"active":   i%3 == 0,
			},
		}
	}
	largeGraph = map[string]interface{}{
		"items":    items,
		"metadata": map[string]interface{}{"count": 1000},
	}
	largeJSON, _ = json.Marshal(largeGraph)

	simplePaths = []string{
		"name",
		"age",
		"address.city",
		"phones.0.number",
		"scores.2",
	}
}

//------------------------------------------------------------------------------
// GET BENCHMARKS (PARSED GRAPHS)
//------------------------------------------------------------------------------

func BenchmarkGet_SimpleSmall_KeyPath(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		keypath.Get(smallGraph, "name")
	}
}

func BenchmarkGet_SimpleSmall_IJSON(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		ijson.Get(smallGraph, "name")
	}
}

func BenchmarkGet_SimpleSmall_GABS(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		gabs.Wrap(smallGraph).Path("name")
	}
}

func BenchmarkGet_SimpleMedium_KeyPath(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		for _, path := range simplePaths {
			keypath.Get(mediumGraph, path)
		}
	}
}

func BenchmarkGet_SimpleMedium_IJSON(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		for _, path := range simplePaths {
			ijson.Get(mediumGraph, path)
		}
	}
}

func BenchmarkGet_SimpleMedium_GABS(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		wrapped := gabs.Wrap(mediumGraph)
		for _, path := range simplePaths {
			wrapped.Path(path)
		}
	}
}

// Operator paths: each fan-out and multi-key collection. Only gjson offers a
// comparable query form, and it works on the byte document.
func BenchmarkGet_Operators_KeyPath(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		keypath.Get(mediumGraph, "phones<number")
		keypath.Get(mediumGraph, "name,email")
	}
}

func BenchmarkGet_Operators_GJSON(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		gjson.GetBytes(mediumJSON, "phones.#.number")
		gjson.GetManyBytes(mediumJSON, "name", "email")
	}
}

func BenchmarkGet_LargeDeep_KeyPath(b *testing.B) {
	b.ReportAllocs()
	paths := []string{
		"items.500.name",
		"items.999.metadata.priority",
		"items.250.tags.1",
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, path := range paths {
			keypath.Get(largeGraph, path)
		}
	}
}

func BenchmarkGet_LargeDeep_IJSON(b *testing.B) {
	b.ReportAllocs()
	paths := []string{
		"items.500.name",
		"items.999.metadata.priority",
		"items.250.tags.1",
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, path := range paths {
			ijson.Get(largeGraph, path)
		}
	}
}

// Pre-compiled trees skip the cache lookup entirely.
func BenchmarkGet_Precompiled_KeyPath(b *testing.B) {
	b.ReportAllocs()
	kp := keypath.New()
	tree := kp.GetTokens("phones<number")
	if tree == nil {
		b.Fatal("tokenize failed")
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		kp.GetTree(mediumGraph, tree)
	}
}

//------------------------------------------------------------------------------
// GET BENCHMARKS (BYTE DOCUMENTS)
//------------------------------------------------------------------------------

func BenchmarkGetDoc_Medium_KeyPath(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		keypath.GetJSON(mediumJSON, "address.city")
	}
}

func BenchmarkGetDoc_Medium_GJSON(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		gjson.GetBytes(mediumJSON, "address.city")
	}
}

func BenchmarkGetDoc_Medium_FASTJSON(b *testing.B) {
	b.ReportAllocs()
	var p fastjson.Parser
	for i := 0; i < b.N; i++ {
		v, _ := p.ParseBytes(mediumJSON)
		v.Get("address", "city")
	}
}

//------------------------------------------------------------------------------
// SET BENCHMARKS
//------------------------------------------------------------------------------

func BenchmarkSet_Simple_KeyPath(b *testing.B) {
	b.ReportAllocs()
	var graph interface{}
	json.Unmarshal(mediumJSON, &graph)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		keypath.Set(graph, "address.city", "Oakland")
	}
}

func BenchmarkSet_Simple_GABS(b *testing.B) {
	b.ReportAllocs()
	var graph interface{}
	json.Unmarshal(mediumJSON, &graph)
	wrapped := gabs.Wrap(graph)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		wrapped.SetP("Oakland", "address.city")
	}
}

func BenchmarkSetDoc_Simple_KeyPath(b *testing.B) {
	b.ReportAllocs()
	kp := keypath.New()
	kp.SetForce(true)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		kp.SetJSON(mediumJSON, "address.city", "Oakland")
	}
}

func BenchmarkSetDoc_Simple_SJSON(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		sjson.SetBytes(mediumJSON, "address.city", "Oakland")
	}
}

//------------------------------------------------------------------------------
// TOKENIZE BENCHMARKS
//------------------------------------------------------------------------------

func BenchmarkTokenize_Cached(b *testing.B) {
	b.ReportAllocs()
	kp := keypath.New()
	for i := 0; i < b.N; i++ {
		kp.GetTokens("items<metadata.priority,active")
	}
}

func BenchmarkTokenize_Uncached(b *testing.B) {
	b.ReportAllocs()
	kp := keypath.New()
	kp.SetCache(false)
	for i := 0; i < b.N; i++ {
		kp.GetTokens("items<metadata.priority,active")
	}
}
