package mocks

//go:generate mockery --name PresenceStore --srcpkg github.com/aevon-lab/geopresence/internal/core/storage --output ./storage --outpkg storagemocks --with-expecter
//go:generate mockery --name RateLimiter --srcpkg github.com/aevon-lab/geopresence/internal/core/storage --output ./storage --outpkg storagemocks --with-expecter
