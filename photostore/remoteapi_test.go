package photostore_test

import (
	"github.com/photostream/photostream/client"
	"github.com/photostream/photostream/photostore"
)

var (
	_ photostore.RemoteAPI = (*client.Client)(nil)
	_ photostore.Loader    = (*photostore.Store)(nil)
)
