/*
Package registry manages companion store configuration for eavstore.

A companion store is a table of (owner, name, value) rows that holds the
dynamic attributes of an owning entity type. Each entity type may have
several stores; they are kept in registration order, which is the order the
attribute lookup chain walks them.

Registration:

	b := registry.NewBuilder()
	b.Register("User", registry.CompanionStoreConfig{
	    Name:   "ContactInfo",
	    Fields: []string{"email", "phone"},
	})
	b.Register("User", registry.CompanionStoreConfig{Name: "Preferences"})
	reg := b.Build()

Unset fields take conventional defaults derived from the entity type:

	Name        "<EntityType>Attribute"   (UserAttribute)
	Table       tableized Name            (user_attributes)
	ForeignKey  "<entity_type>_id"        (user_id)
	NameField   "name"
	ValueField  "value"

Registering the same store name twice for an entity type is a no-op.
Malformed configuration fails with a ConfigError. The built StoreRegistry is
immutable and should be constructed once during initialization and passed
to every model that needs it.

Registries can also be described in YAML and read with Load or LoadFile.
*/
package registry
