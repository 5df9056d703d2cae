package suggest

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConcurrentAddAndSuggest(t *testing.T) {
	o := NewOracle()

	var wg sync.WaitGroup
	for w := range 4 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for i := range 100 {
				o.Add(fmt.Sprintf("Worker %d item %03d", w, i))
			}
		}()
		go func() {
			defer wg.Done()
			for range 100 {
				resp := o.Suggest(Request{Query: "worker it", Limit: 10})
				assert.LessOrEqual(t, len(resp.Suggestions), 10)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 400, o.Len())
	resp := o.Suggest(Request{Query: "worker 2 item 05", Limit: 20})
	assert.Len(t, resp.Suggestions, 10)
}
