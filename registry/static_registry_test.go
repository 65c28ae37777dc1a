package registry

import "testing"

func TestStaticRegisterDiscoverDeregister(t *testing.T) {
	r := NewStaticRegistry()

	inst1 := ServiceInstance{Addr: "127.0.0.1:9001", Weight: 10}
	inst2 := ServiceInstance{Addr: "127.0.0.1:9002", Weight: 5}

	if err := r.Register("Echo", inst1, 10); err != nil {
		t.Fatal(err)
	}
	if err := r.Register("Echo", inst2, 10); err != nil {
		t.Fatal(err)
	}

	instances, err := r.Discover("Echo")
	if err != nil {
		t.Fatal(err)
	}
	if len(instances) != 2 {
		t.Fatalf("expect 2 instances, got %d", len(instances))
	}

	if err := r.Deregister("Echo", inst1.Addr); err != nil {
		t.Fatal(err)
	}

	instances, err = r.Discover("Echo")
	if err != nil {
		t.Fatal(err)
	}
	if len(instances) != 1 || instances[0].Addr != inst2.Addr {
		t.Fatalf("expect only %s left, got %+v", inst2.Addr, instances)
	}
}

func TestStaticDiscoverUnknownService(t *testing.T) {
	r := NewStaticRegistry()
	instances, err := r.Discover("Nope")
	if err != nil {
		t.Fatal(err)
	}
	if len(instances) != 0 {
		t.Fatalf("expect no instances, got %d", len(instances))
	}
}

func TestStaticWatchReceivesSnapshot(t *testing.T) {
	r := NewStaticRegistry()
	ch := r.Watch("Echo")

	if err := r.Register("Echo", ServiceInstance{Addr: "127.0.0.1:9001"}, 10); err != nil {
		t.Fatal(err)
	}

	select {
	case snapshot := <-ch:
		if len(snapshot) != 1 {
			t.Fatalf("expect 1 instance in snapshot, got %d", len(snapshot))
		}
	default:
		t.Fatal("expect a snapshot to be available on the watch channel")
	}
}
