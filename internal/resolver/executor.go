package resolver

import (
	"context"
	"runtime"

	"github.com/cn-address-resolver/app/models"
	"golang.org/x/sync/errgroup"
)

// DefaultChunkSize số dòng mỗi worker xử lý một lượt
const DefaultChunkSize = 2048

// Executor chạy Resolver trên nhiều địa chỉ, chia input thành các chunk
// liên tiếp và xử lý song song. Mỗi dòng độc lập nên thứ tự xử lý không
// ảnh hưởng kết quả; output luôn giữ đúng thứ tự input.
type Executor struct {
	resolver  *Resolver
	workers   int
	chunkSize int
}

// NewExecutor tạo Executor; workers <= 0 dùng GOMAXPROCS, chunkSize <= 0 dùng DefaultChunkSize
func NewExecutor(r *Resolver, workers, chunkSize int) *Executor {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Executor{resolver: r, workers: workers, chunkSize: chunkSize}
}

// Resolver resolver mà executor dùng
func (e *Executor) Resolver() *Resolver { return e.resolver }

// WithOptions trả về Executor cùng cấu hình worker nhưng resolver dùng opts
func (e *Executor) WithOptions(opts Options) *Executor {
	if opts == e.resolver.Options() {
		return e
	}
	return &Executor{resolver: e.resolver.WithOptions(opts), workers: e.workers, chunkSize: e.chunkSize}
}

// Transform resolve từng địa chỉ; len(output) == len(addresses), output[i] ứng với addresses[i].
// Chuỗi rỗng cho ra record rỗng. Chỉ lỗi khi ctx bị hủy.
func (e *Executor) Transform(ctx context.Context, addresses []string) ([]models.AddressRecord, error) {
	return e.TransformWithProgress(ctx, addresses, nil)
}

// TransformWithProgress như Transform, gọi progress(n) sau mỗi chunk với n là số dòng vừa xong.
// progress có thể được gọi đồng thời từ nhiều goroutine.
func (e *Executor) TransformWithProgress(ctx context.Context, addresses []string, progress func(n int)) ([]models.AddressRecord, error) {
	out := make([]models.AddressRecord, len(addresses))
	err := e.Each(ctx, len(addresses), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			out[i] = e.resolver.Resolve(addresses[i])
		}
		if progress != nil {
			progress(hi - lo)
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Each chia [0, n) thành các chunk và gọi fn(lo, hi) song song.
// fn chỉ được ghi vào vùng [lo, hi) của dữ liệu dùng chung.
func (e *Executor) Each(ctx context.Context, n int, fn func(lo, hi int)) error {
	if n == 0 {
		return ctx.Err()
	}
	if n <= e.chunkSize || e.workers == 1 {
		if err := ctx.Err(); err != nil {
			return err
		}
		for lo := 0; lo < n; lo += e.chunkSize {
			fn(lo, min(lo+e.chunkSize, n))
		}
		return ctx.Err()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for lo := 0; lo < n; lo += e.chunkSize {
		lo, hi := lo, min(lo+e.chunkSize, n)
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fn(lo, hi)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
