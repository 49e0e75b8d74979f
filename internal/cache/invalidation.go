package cache

import (
	"context"
	"log/slog"
)

// dropPattern removes every key matching pattern; failures are only logged
func dropPattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Cache invalidation failed", "prefix", helper.prefix, "pattern", pattern, "error", err)
	}
}

// InvalidateTestCache drops the cached test and every cached test listing
func InvalidateTestCache(ctx context.Context, cm *CacheManager, testID string) {
	if testID != "" {
		if err := cm.Test.Delete(ctx, "id:"+testID); err != nil {
			slog.ErrorContext(ctx, "Cache delete failed", "test_id", testID, "error", err)
		}
	}
	dropPattern(ctx, cm.Test, "list:*")
}

// InvalidateAllTests drops every cached test and listing. Deleting a semester
// subject or class clears the matching links on tests.
func InvalidateAllTests(ctx context.Context, cm *CacheManager) {
	dropPattern(ctx, cm.Test, "*")
}

// InvalidateCatalogCache drops every cached entry of one catalog collection
func InvalidateCatalogCache(ctx context.Context, cm *CacheManager, collection string) {
	dropPattern(ctx, cm.Catalog, collection+":*")
}
