package region

import (
	"fmt"

	"github.com/kvgrid/kvgrid/rpc/common"
	"github.com/kvgrid/kvgrid/rpc/serializer"
	"github.com/kvgrid/kvgrid/rpc/transport"
	"github.com/puzpuzpuz/xsync/v3"
)

// NewRPCLocator creates a locator that resolves table topology by asking the
// cluster locator endpoint and caches the region list per table. The first
// Locate for a table performs one remote call; later lookups are served from
// the cache until Invalidate is called.
func NewRPCLocator(endpoint string, t transport.IClientTransport, s serializer.ISerializer) Locator {
	return &rpcLocator{
		endpoint:   endpoint,
		transport:  t,
		serializer: s,
		cache:      xsync.NewMapOf[string, []common.RegionDesc](),
	}
}

// rpcLocator implements Locator against a remote topology service
type rpcLocator struct {
	endpoint   string
	transport  transport.IClientTransport
	serializer serializer.ISerializer
	cache      *xsync.MapOf[string, []common.RegionDesc]
}

// --------------------------------------------------------------------------
// Interface Methods (docu see region.Locator)
// --------------------------------------------------------------------------

func (l *rpcLocator) Locate(table string, row []byte) (common.RegionDesc, error) {
	regions, err := l.regionsOf(table)
	if err != nil {
		return common.RegionDesc{}, err
	}
	return locateIn(regions, table, row)
}

func (l *rpcLocator) LocateRange(table string, startRow, stopRow []byte) ([]common.RegionDesc, error) {
	regions, err := l.regionsOf(table)
	if err != nil {
		return nil, err
	}
	return locateRangeIn(regions, table, startRow, stopRow)
}

func (l *rpcLocator) Invalidate(table string) {
	l.cache.Delete(table)
	Logger.Debugf("Invalidated cached regions of table %s", table)
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// regionsOf returns the cached region list of a table, fetching it from the
// locator endpoint on a cache miss
func (l *rpcLocator) regionsOf(table string) ([]common.RegionDesc, error) {
	if regions, ok := l.cache.Load(table); ok {
		return regions, nil
	}

	regions, err := l.fetch(table)
	if err != nil {
		return nil, err
	}

	l.cache.Store(table, regions)
	Logger.Infof("Resolved %d regions for table %s", len(regions), table)
	return regions, nil
}

// fetch performs the Locate remote call against the locator endpoint
func (l *rpcLocator) fetch(table string) ([]common.RegionDesc, error) {
	req := common.NewLocateRequest(table)

	reqBytes, err := l.serializer.Serialize(*req)
	if err != nil {
		return nil, err
	}

	respBytes, err := l.transport.Send(l.endpoint, reqBytes)
	if err != nil {
		return nil, fmt.Errorf("locate table %s: %w", table, err)
	}

	resp := &common.Message{}
	if err := l.serializer.Deserialize(respBytes, resp); err != nil {
		return nil, fmt.Errorf("locate table %s: %v", table, err)
	}

	if resp.MsgType == common.MsgTError || resp.Err != "" {
		return nil, fmt.Errorf("locate table %s: %s", table, resp.Err)
	}

	if len(resp.Regions) == 0 {
		return nil, fmt.Errorf("%w: table %s has no regions", ErrNoRegion, table)
	}

	return resp.Regions, nil
}
